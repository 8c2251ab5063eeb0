package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sixop/sixop/cmd"
	"github.com/sixop/sixop/preset"
	"github.com/sixop/sixop/sheet"
	"github.com/sixop/sixop/version"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	versionFlag := flag.Bool("v", false, "Print version.")
	algorithms := flag.String("algorithms", "", "Load the algorithm library from this YAML file instead of the built-in one.")
	templateDir := flag.String("t", "", "Use the templates in this directory instead of the built-in ones.")
	builtinOnly := flag.Bool("builtin", false, "Do not load user presets.")
	listAlgorithms := flag.Bool("a", false, "Print the algorithm table.")
	listBank := flag.Bool("b", false, "Print the preset bank.")
	dump := flag.Bool("yaml", false, "Print the named presets in the preset file format instead of as a sheet.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if *help || (flag.NArg() == 0 && !*listAlgorithms && !*listBank) {
		flag.Usage()
		os.Exit(0)
	}
	lib, err := cmd.Library(*algorithms)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	var s *sheet.Sheet
	if *templateDir != "" {
		s, err = sheet.NewFromTemplates(lib, *templateDir)
	} else {
		s, err = sheet.New(lib)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	bank := cmd.Presets(*builtinOnly)
	retval := 0
	if *listAlgorithms {
		if err := s.Algorithms(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			retval = 1
		}
	}
	if *listBank {
		if err := s.Bank(os.Stdout, bank); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			retval = 1
		}
	}
	for _, name := range flag.Args() {
		p, err := bank.Get(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			retval = 1
			continue
		}
		if *dump {
			data, err := preset.Marshal(p)
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not encode %v: %v\n", name, err)
				retval = 1
				continue
			}
			os.Stdout.Write(data)
			continue
		}
		if err := s.Patch(os.Stdout, p); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Sixop sheet printer: documents presets and algorithms.\nUsage: %s [flags] [preset name ...]\n", os.Args[0])
	flag.PrintDefaults()
}
