package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	layout "github.com/goliatone/go-layout"
)

func main() {
	name := flag.String("template", "", "template name to render")
	base := flag.String("base", ".", "template base directory")
	ext := flag.String("ext", ".tpl", "template file extension")
	varsFile := flag.String("vars", "", "YAML file with template variables")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	if *name == "" {
		log.Fatal("a -template name is required")
	}

	variables, err := loadVariables(*varsFile)
	if err != nil {
		log.Fatalf("Failed to load variables: %v", err)
	}

	engine := layout.New(
		layout.WithBaseDir(*base),
		layout.WithExtension(*ext),
	)

	result, err := engine.Render(context.Background(), layout.Request{
		Template:  *name,
		Variables: variables,
	})
	if err != nil {
		log.Fatalf("Failed to render template: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(result), 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Output written to %s\n", *output)
	} else {
		fmt.Print(result)
	}
}

func loadVariables(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	variables := map[string]any{}
	if err := yaml.Unmarshal(raw, &variables); err != nil {
		return nil, err
	}
	return variables, nil
}
