// Command propinfer-repl is the interactive driver (spec.md §6 C8): it
// builds a PropositionGraph for a target proposition, runs a full pass, and
// then serves a small REPL over the CLI surface spec.md §6 specifies —
// set <index> <prob>, reinit, pass, quit — letting a user poke evidence and
// watch marginals move.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/cognicore/propinfer/pkg/propinfer/belief"
	"github.com/cognicore/propinfer/pkg/propinfer/belief/sqlitebelief"
	"github.com/cognicore/propinfer/pkg/propinfer/config"
	"github.com/cognicore/propinfer/pkg/propinfer/factormodel"
	"github.com/cognicore/propinfer/pkg/propinfer/factormodel/loglinear"
	"github.com/cognicore/propinfer/pkg/propinfer/inferencer"
	"github.com/cognicore/propinfer/pkg/propinfer/model"
	"github.com/cognicore/propinfer/pkg/propinfer/predgraph"
	"github.com/cognicore/propinfer/pkg/propinfer/propgraph"
	"github.com/cognicore/propinfer/pkg/propinfer/trace"
)

func main() {
	var (
		rulesPath   = flag.String("rules", "", "Static rule file, YAML (required)")
		weightsPath = flag.String("weights", "", "Log-linear weight file, YAML (optional; default model is Constant 0.5)")
		constant    = flag.Float64("constant", 0.5, "Marginal returned by the default Constant factor model")
		dbPath      = flag.String("db", "", "Persist evidence to a SQLite file instead of in-memory")
		targetFn    = flag.String("target-fn", "", "Target predicate function name (required)")
		targetArgs  = flag.String("target-args", "", "Target predicate args, comma-separated role=domain:value (e.g. x=Person:alice)")
		maxFanIn    = flag.Int("max-fan-in", propgraph.DefaultMaxFanIn, "Reject graphs with fan-in above this cap")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "propinfer-repl: ", log.LstdFlags)

	if *rulesPath == "" {
		logger.Fatal("--rules required")
	}
	if *targetFn == "" {
		logger.Fatal("--target-fn required")
	}

	target, err := parseTargetPredicate(*targetFn, *targetArgs)
	if err != nil {
		logger.Fatalf("parse target: %v", err)
	}
	targetProp, err := model.NewProposition(target)
	if err != nil {
		logger.Fatalf("target is not ground: %v", err)
	}

	pg, err := predgraph.LoadStaticGraph(*rulesPath)
	if err != nil {
		logger.Fatalf("load rules: %v", err)
	}

	graph, err := propgraph.Build(pg, targetProp, propgraph.WithMaxFanIn(*maxFanIn))
	if err != nil {
		logger.Fatalf("build proposition graph: %v", err)
	}

	fm, err := buildFactorModel(*weightsPath, *constant)
	if err != nil {
		logger.Fatalf("build factor model: %v", err)
	}

	table, cleanup, err := buildEvidenceTable(*dbPath)
	if err != nil {
		logger.Fatalf("build evidence table: %v", err)
	}
	defer cleanup()

	inf := inferencer.New(graph, fm, table)
	tw := trace.New(os.Stdout)

	singles := observableSingles(graph)

	tw.Blue("loaded %d nodes, target=%s, run=%s", len(graph.AllNodes()), targetProp, inf.RunID)
	printIndex(singles)

	if _, err := inf.RunFullPass(); err != nil {
		tw.Red("initial pass: %v", err)
	} else {
		tw.Green("initial pass complete")
	}
	printMarginal(tw, inf, targetProp)

	repl(bufio.NewScanner(os.Stdin), os.Stdout, tw, logger, inf, table, singles, targetProp)
}

// repl implements spec.md §6's CLI surface: set <index> <prob>, reinit,
// pass, quit. Exit code 0 on clean quit; non-zero on any error surfaced to
// main via os.Exit.
func repl(scanner *bufio.Scanner, out *os.File, tw *trace.Writer, logger *log.Logger, inf *inferencer.Inferencer, table belief.MutableTable, singles []model.Proposition, target model.Proposition) {
	fmt.Fprintln(out, "commands: set <index> <prob> | reinit | pass | quit")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "set":
			if len(fields) != 3 {
				tw.Red("usage: set <index> <prob>")
				continue
			}
			handleSet(tw, table, singles, fields[1], fields[2])
		case "reinit":
			if err := inf.Reinit(); err != nil {
				tw.Red("reinit: %v", err)
				os.Exit(1)
			}
			tw.Green("reinitialized")
		case "pass":
			if err := runPass(inf); err != nil {
				tw.Red("pass: %v", err)
				continue
			}
			tw.Green("pass complete")
			printMarginal(tw, inf, target)
		case "quit":
			fmt.Fprintln(out, "goodbye")
			os.Exit(0)
		default:
			tw.Yellow("unknown command %q", fields[0])
		}
	}
	os.Exit(0)
}

func handleSet(tw *trace.Writer, table belief.MutableTable, singles []model.Proposition, idxArg, probArg string) {
	idx, err := strconv.Atoi(idxArg)
	if err != nil || idx < 0 || idx >= len(singles) {
		tw.Red("invalid index %q (have %d propositions)", idxArg, len(singles))
		return
	}
	prob, err := strconv.ParseFloat(probArg, 64)
	if err != nil || prob < 0 || prob > 1 {
		tw.Red("invalid probability %q (want a number in [0,1])", probArg)
		return
	}
	if err := table.StorePropositionProbability(singles[idx], prob); err != nil {
		tw.Red("store evidence: %v", err)
		return
	}
	tw.Green("set %s = %.4f", singles[idx], prob)
}

// runPass always reruns Initialize, the π-pass, the λ-pass and marginal
// readout, so "pass" after "set" picks up the new evidence (storing evidence
// does not move the Inferencer's state machine; this driver takes the simple
// "full reinit + pass" path rather than the incremental one in §4.8,
// leaving UpdateEvidence available for programmatic callers).
func runPass(inf *inferencer.Inferencer) error {
	if err := inf.Initialize(); err != nil {
		return err
	}
	if err := inf.PiPass(); err != nil {
		return err
	}
	if err := inf.LambdaPass(); err != nil {
		return err
	}
	_, err := inf.ComputeMarginals()
	return err
}

func printMarginal(tw *trace.Writer, inf *inferencer.Inferencer, target model.Proposition) {
	m, err := inf.MarginalFor(target)
	if err != nil {
		tw.Red("marginal: %v", err)
		return
	}
	if m.Degenerate {
		tw.Yellow("P(%s=1) is degenerate (contradictory evidence)", target)
		return
	}
	tw.Blue("P(%s=1) = %.6f", target, m.P1)
}

func printIndex(singles []model.Proposition) {
	fmt.Println("propositions:")
	for i, p := range singles {
		fmt.Printf("  [%d] %s\n", i, p)
	}
}

// observableSingles lists every Single node in the graph in discovery order
// (the order Graph.AllNodes returns), the stable index space
// "set <index> <prob>" addresses.
func observableSingles(graph *propgraph.Graph) []model.Proposition {
	var out []model.Proposition
	for _, n := range graph.AllNodes() {
		if n.IsSingle() {
			out = append(out, n.Single)
		}
	}
	return out
}

func buildFactorModel(weightsPath string, constant float64) (factormodel.Model, error) {
	if weightsPath == "" {
		return factormodel.Constant{Marginal: constant}, nil
	}
	wf, err := config.LoadWeights(weightsPath)
	if err != nil {
		return nil, err
	}
	return loglinear.New(wf), nil
}

func buildEvidenceTable(dbPath string) (belief.MutableTable, func(), error) {
	if dbPath == "" {
		return belief.NewMemTable(), func() {}, nil
	}
	t, err := sqlitebelief.Open(context.Background(), dbPath)
	if err != nil {
		return nil, nil, err
	}
	return t, func() { t.Close() }, nil
}

// parseTargetPredicate builds a Predicate from --target-fn and
// --target-args (role=domain:value,role=domain:value,...).
func parseTargetPredicate(function, argsSpec string) (model.Predicate, error) {
	if argsSpec == "" {
		return model.NewPredicate(function, nil), nil
	}
	parts := strings.Split(argsSpec, ",")
	roles := make([]model.LabeledArgument, 0, len(parts))
	for _, part := range parts {
		roleAndRest := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(roleAndRest) != 2 {
			return model.Predicate{}, fmt.Errorf("malformed target arg %q (want role=domain:value)", part)
		}
		domainAndValue := strings.SplitN(roleAndRest[1], ":", 2)
		if len(domainAndValue) != 2 {
			return model.Predicate{}, fmt.Errorf("malformed target arg %q (want role=domain:value)", part)
		}
		roles = append(roles, model.LabeledArgument{
			RoleName: roleAndRest[0],
			Argument: model.NewConstant(model.Domain(domainAndValue[0]), domainAndValue[1]),
		})
	}
	return model.NewPredicate(function, roles), nil
}
