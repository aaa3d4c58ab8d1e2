package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/a3tai/formengine/internal/formengine"
	"github.com/a3tai/formengine/internal/model"
)

var (
	reverse    = flag.Bool("reverse", false, "Serialize a model JSON file back into hierarchical JSON")
	priorPath  = flag.String("prior", "", "Path to a previously persisted field list (JSON array)")
	inspect    = flag.Bool("inspect", false, "Print the per-key classification report instead of converting")
	compact    = flag.Bool("compact", false, "Emit compact JSON instead of indented")
	help       = flag.Bool("help", false, "Show help message")
	maxDocSize = flag.Int64("maxdocsize", 10*1024*1024, "Maximum input size in bytes")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: input file required (use - for stdin)\n\n")
		printUsage()
		os.Exit(1)
	}

	input, err := readInput(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	service := formengine.NewService(*maxDocSize, false)

	var payload any
	switch {
	case *reverse:
		payload, err = runReverse(service, input)
	case *inspect:
		payload, err = runInspect(service, input)
	default:
		payload, err = runConvert(service, input)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := writeOutput(payload); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}

func runConvert(service *formengine.Service, input []byte) (any, error) {
	req := formengine.FormConvertRequest{Hierarchical: input}
	if *priorPath != "" {
		priorData, err := os.ReadFile(*priorPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read prior fields: %w", err)
		}
		var prior []model.FieldDescriptor
		if err := json.Unmarshal(priorData, &prior); err != nil {
			return nil, fmt.Errorf("failed to parse prior fields: %w", err)
		}
		req.PriorFields = prior
	}
	return service.Convert(req)
}

func runReverse(service *formengine.Service, input []byte) (any, error) {
	sections, err := model.DecodeSections(input)
	if err != nil {
		return nil, err
	}
	result, err := service.Serialize(formengine.FormSerializeRequest{Sections: sections})
	if err != nil {
		return nil, err
	}
	return result.Document, nil
}

func runInspect(service *formengine.Service, input []byte) (any, error) {
	result, err := service.Inspect(formengine.FormInspectRequest{Hierarchical: input})
	if err != nil {
		return nil, err
	}
	return result.Decisions, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(payload any) error {
	enc := json.NewEncoder(os.Stdout)
	if !*compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(payload)
}

func printHelp() {
	fmt.Println("Form Convert - turn hierarchical document JSON into an editable form model")
	fmt.Println()
	fmt.Println("Converts the loosely-typed nested JSON produced by a document analysis step")
	fmt.Println("into typed sections and fields (including tables with multi-level headers),")
	fmt.Println("and serializes edited models back into the same hierarchical shape.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -reverse       Input is a model JSON (section array); emit hierarchical JSON")
	fmt.Println("  -inspect       Print per-key classification decisions instead of converting")
	fmt.Println("  -prior         Previously persisted field list; confirmed edits take precedence")
	fmt.Println("  -compact       Emit compact JSON")
	fmt.Println("  -maxdocsize    Maximum input size in bytes")
	fmt.Println("  -help          Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  form_convert analysis.json")
	fmt.Println("  form_convert -prior fields.json analysis.json")
	fmt.Println("  form_convert -inspect analysis.json")
	fmt.Println("  form_convert -reverse model.json")
	fmt.Println("  cat analysis.json | form_convert -")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  form_convert [OPTIONS] <input_file | ->")
}
