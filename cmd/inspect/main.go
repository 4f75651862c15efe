package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/storyge/corert/typesystem"
)

func main() {
	var (
		imageFile   = flag.String("image", "", "Path to metadata image file")
		typeName    = flag.String("type", "", "Restrict output to one type (full name)")
		fieldName   = flag.String("field", "", "Dump one field of -type in detail")
		list        = flag.Bool("list", false, "List types and fields and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging to stderr")
	)
	flag.Parse()

	if *imageFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -image <file.cdmt> [-type name] [-field name]")
		fmt.Fprintln(os.Stderr, "       inspect -image <file.cdmt> -list")
		fmt.Fprintln(os.Stderr, "       inspect -image <file.cdmt> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		typesystem.SetLogger(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*imageFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*imageFile, *typeName, *fieldName, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(imageFile, typeName, fieldName string, listOnly bool) error {
	data, err := os.ReadFile(imageFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	mod, err := typesystem.LoadModule(data)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	img := mod.Image()
	fmt.Printf("Image: %s\n", imageFile)
	fmt.Printf("Types: %d\n", len(img.TypeDefs))
	fmt.Printf("Fields: %d\n", len(img.Fields))
	fmt.Printf("Custom attributes: %d\n", len(img.Attributes))

	if fieldName != "" {
		if typeName == "" {
			return fmt.Errorf("-field requires -type")
		}
		return dumpField(mod, typeName, fieldName)
	}

	if !listOnly && typeName == "" {
		return nil
	}

	types, err := mod.Types()
	if err != nil {
		return fmt.Errorf("enumerate types: %w", err)
	}

	for _, t := range types {
		if typeName != "" && t.FullName() != typeName {
			continue
		}
		fmt.Printf("\n%s\n", t.FullName())
		for _, f := range t.Fields() {
			name, err := f.Name()
			if err != nil {
				return fmt.Errorf("field name: %w", err)
			}
			fmt.Printf("  %-24s %-20s %s\n", name, fieldTypeString(f), flagString(f))
		}
	}

	return nil
}

func dumpField(mod *typesystem.Module, typeName, fieldName string) error {
	t, err := mod.TypeByName(typeName)
	if err != nil {
		return err
	}
	f := t.FieldByName(fieldName)
	if f == nil {
		return fmt.Errorf("field %s.%s not found", typeName, fieldName)
	}

	fmt.Printf("\n%s\n", f)
	fmt.Printf("  handle:        %s\n", f.Handle())
	fmt.Printf("  attributes:    %#04x\n", uint16(f.Attributes()))
	fmt.Printf("  static:        %v\n", f.IsStatic())
	fmt.Printf("  init-only:     %v\n", f.IsInitOnly())
	fmt.Printf("  literal:       %v\n", f.IsLiteral())
	fmt.Printf("  thread-static: %v\n", f.IsThreadStatic())
	fmt.Printf("  has RVA:       %v\n", f.HasRVA())
	fmt.Printf("  type:          %s\n", fieldTypeString(f))
	return nil
}

func fieldTypeString(f *typesystem.FieldDescriptor) string {
	ft, err := f.FieldType()
	if err != nil {
		return "<malformed signature>"
	}
	return ft.String()
}

func flagString(f *typesystem.FieldDescriptor) string {
	var flags []string
	if f.IsStatic() {
		flags = append(flags, "static")
	}
	if f.IsInitOnly() {
		flags = append(flags, "initonly")
	}
	if f.IsLiteral() {
		flags = append(flags, "literal")
	}
	if f.IsThreadStatic() {
		flags = append(flags, "threadstatic")
	}
	if f.HasRVA() {
		flags = append(flags, "rva")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
