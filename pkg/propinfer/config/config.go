// Package config loads the YAML files that parameterize a propinfer
// deployment: the set of valid domains and a factor model's learned
// weights. It mirrors pkg/korel/config's LoadTaxonomy/LoadStoplist style:
// a thin os.ReadFile + yaml.Unmarshal wrapper per document shape.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DomainSpec names the closed set of entity-type domains a deployment
// recognizes (spec.md §3: "Domain is a closed enumeration of entity
// types"). The inference core never reads this file itself — it treats
// Domain as an opaque label — and the adapters (predgraph, factormodel) do
// not check model.Argument domains against it either; Contains is the only
// lookup it offers.
type DomainSpec struct {
	Domains []string `yaml:"domains"`
}

// LoadDomains loads the domain enumeration from a YAML file shaped like:
//
//	domains:
//	  - Person
//	  - Organization
func LoadDomains(path string) (*DomainSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read domains file %s: %w", path, err)
	}

	var spec DomainSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse domains file %s: %w", path, err)
	}
	return &spec, nil
}

// Contains reports whether name is one of the configured domains.
func (d *DomainSpec) Contains(name string) bool {
	for _, dom := range d.Domains {
		if dom == name {
			return true
		}
	}
	return false
}

// WeightFile is the on-disk shape of a log-linear FactorModel's learned
// weights: one float per feature name, per class label (spec.md's
// CLASS_LABELS = [0, 1]). Produced by a training process that is out of
// scope for this repository (spec.md §1); only loading is implemented.
type WeightFile struct {
	ClassZero map[string]float64 `yaml:"class_0"`
	ClassOne  map[string]float64 `yaml:"class_1"`
}

// LoadWeights loads a trained log-linear model's weights from a YAML file
// shaped like:
//
//	class_0:
//	  "premise_hash[...]+": -0.3
//	class_1:
//	  "premise_hash[...]+": 1.2
func LoadWeights(path string) (*WeightFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights file %s: %w", path, err)
	}

	var wf WeightFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse weights file %s: %w", path, err)
	}
	if wf.ClassZero == nil {
		wf.ClassZero = map[string]float64{}
	}
	if wf.ClassOne == nil {
		wf.ClassOne = map[string]float64{}
	}
	return &wf, nil
}

// ForClass returns the weight map for the given class label (0 or 1).
func (wf *WeightFile) ForClass(classLabel int) map[string]float64 {
	if classLabel == 1 {
		return wf.ClassOne
	}
	return wf.ClassZero
}
