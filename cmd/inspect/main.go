package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/uiabridge/olevariant/ole"
	"github.com/uiabridge/olevariant/oleaut"
	"github.com/uiabridge/olevariant/safearray"
	"github.com/uiabridge/olevariant/variant"
)

func main() {
	var (
		valueArg    = flag.String("value", "", "Variant literal, e.g. i4:42, str:hello, bool[]:true,false")
		opArg       = flag.String("op", "value", "Operation to apply (see -list)")
		withArg     = flag.String("with", "", "Second operand literal for binary operations")
		list        = flag.Bool("list", false, "List literal tags and operations and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose platform logging")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		oleaut.SetLogger(logger)
	}

	if *list {
		printReference()
		return
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *valueArg == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -value <literal> [-op name] [-with <literal>]")
		fmt.Fprintln(os.Stderr, "       inspect -list")
		fmt.Fprintln(os.Stderr, "       inspect -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(*valueArg, *opArg, *withArg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(valueLit, opName, withLit string) error {
	v, err := parseLiteral(valueLit)
	if err != nil {
		return fmt.Errorf("parse -value: %w", err)
	}
	defer v.Close()

	op, ok := operations[opName]
	if !ok {
		return fmt.Errorf("unknown operation %q (try -list)", opName)
	}

	var other *variant.Variant
	if op.binary {
		if withLit == "" {
			return fmt.Errorf("operation %q needs -with", opName)
		}
		w, err := parseLiteral(withLit)
		if err != nil {
			return fmt.Errorf("parse -with: %w", err)
		}
		defer w.Close()
		other = &w
	}

	fmt.Printf("Operand: %s (%s)\n", v.String(), v.Type())
	if other != nil {
		fmt.Printf("With:    %s (%s)\n", other.String(), other.Type())
	}

	result, err := op.apply(&v, other)
	if err != nil {
		return err
	}
	fmt.Printf("Result:  %s\n", result)
	return nil
}

// operation applies a getter or operator to one or two variants and
// renders the outcome.
type operation struct {
	binary bool
	help   string
	apply  func(v, other *variant.Variant) (string, error)
}

func getterOp(help string, get func(v *variant.Variant) (string, error)) operation {
	return operation{
		help: help,
		apply: func(v, _ *variant.Variant) (string, error) {
			return get(v)
		},
	}
}

func unaryOp(help string, f func(v *variant.Variant) (variant.Variant, error)) operation {
	return operation{
		help: help,
		apply: func(v, _ *variant.Variant) (string, error) {
			out, err := f(v)
			if err != nil {
				return "", err
			}
			defer out.Close()
			return fmt.Sprintf("%s (%s)", out.String(), out.Type()), nil
		},
	}
}

func binaryOp(help string, f func(a, b *variant.Variant) (variant.Variant, error)) operation {
	return operation{
		binary: true,
		help:   help,
		apply: func(v, other *variant.Variant) (string, error) {
			out, err := f(v, other)
			if err != nil {
				return "", err
			}
			defer out.Close()
			return fmt.Sprintf("%s (%s)", out.String(), out.Type()), nil
		},
	}
}

var operations = map[string]operation{
	"value": getterOp("decode to the structural view plus the coercion row", func(v *variant.Variant) (string, error) {
		val, err := v.Value()
		if err != nil {
			return "", err
		}
		return val.String() + "\n" + coercionRow(v), nil
	}),
	"string": getterOp("coerce to string", func(v *variant.Variant) (string, error) {
		s, err := v.ToString()
		if err != nil {
			return "", err
		}
		return strconv.Quote(s), nil
	}),
	"bool": getterOp("coerce to bool", func(v *variant.Variant) (string, error) {
		b, err := v.Bool()
		return strconv.FormatBool(b), err
	}),
	"int32": getterOp("coerce to int32", func(v *variant.Variant) (string, error) {
		n, err := v.Int32()
		return strconv.FormatInt(int64(n), 10), err
	}),
	"int64": getterOp("coerce to int64", func(v *variant.Variant) (string, error) {
		n, err := v.Int64()
		return strconv.FormatInt(n, 10), err
	}),
	"uint64": getterOp("coerce to uint64", func(v *variant.Variant) (string, error) {
		n, err := v.Uint64()
		return strconv.FormatUint(n, 10), err
	}),
	"float64": getterOp("coerce to float64", func(v *variant.Variant) (string, error) {
		f, err := v.Float64()
		return strconv.FormatFloat(f, 'g', -1, 64), err
	}),
	"abs": unaryOp("absolute value", func(v *variant.Variant) (variant.Variant, error) {
		return v.Abs()
	}),
	"neg": unaryOp("arithmetic negation", func(v *variant.Variant) (variant.Variant, error) {
		return v.Negate()
	}),
	"not": unaryOp("bitwise/logical complement", func(v *variant.Variant) (variant.Variant, error) {
		return v.Not()
	}),
	"add": binaryOp("sum (strings concatenate)", func(a, b *variant.Variant) (variant.Variant, error) {
		return a.Add(b)
	}),
	"sub": binaryOp("difference", func(a, b *variant.Variant) (variant.Variant, error) {
		return a.Subtract(b)
	}),
	"mul": binaryOp("product", func(a, b *variant.Variant) (variant.Variant, error) {
		return a.Multiply(b)
	}),
	"div": binaryOp("quotient", func(a, b *variant.Variant) (variant.Variant, error) {
		return a.Divide(b)
	}),
	"mod": binaryOp("integer remainder", func(a, b *variant.Variant) (variant.Variant, error) {
		return a.Mod(b)
	}),
	"and": binaryOp("conjunction", func(a, b *variant.Variant) (variant.Variant, error) {
		return a.And(b)
	}),
	"or": binaryOp("disjunction", func(a, b *variant.Variant) (variant.Variant, error) {
		return a.Or(b)
	}),
	"xor": binaryOp("exclusive disjunction", func(a, b *variant.Variant) (variant.Variant, error) {
		return a.Xor(b)
	}),
}

// coercionRow renders every primitive getter against the variant, one
// line per destination, value or error.
func coercionRow(v *variant.Variant) string {
	type getter struct {
		name string
		get  func() (string, error)
	}
	getters := []getter{
		{"bool", func() (string, error) { b, err := v.Bool(); return strconv.FormatBool(b), err }},
		{"int8", func() (string, error) { n, err := v.Int8(); return strconv.FormatInt(int64(n), 10), err }},
		{"int16", func() (string, error) { n, err := v.Int16(); return strconv.FormatInt(int64(n), 10), err }},
		{"int32", func() (string, error) { n, err := v.Int32(); return strconv.FormatInt(int64(n), 10), err }},
		{"int64", func() (string, error) { n, err := v.Int64(); return strconv.FormatInt(n, 10), err }},
		{"uint8", func() (string, error) { n, err := v.Uint8(); return strconv.FormatUint(uint64(n), 10), err }},
		{"uint16", func() (string, error) { n, err := v.Uint16(); return strconv.FormatUint(uint64(n), 10), err }},
		{"uint32", func() (string, error) { n, err := v.Uint32(); return strconv.FormatUint(uint64(n), 10), err }},
		{"uint64", func() (string, error) { n, err := v.Uint64(); return strconv.FormatUint(n, 10), err }},
		{"float32", func() (string, error) { f, err := v.Float32(); return strconv.FormatFloat(float64(f), 'g', -1, 32), err }},
		{"float64", func() (string, error) { f, err := v.Float64(); return strconv.FormatFloat(f, 'g', -1, 64), err }},
		{"string", func() (string, error) { s, err := v.ToString(); return strconv.Quote(s), err }},
	}

	var b strings.Builder
	for _, g := range getters {
		s, err := g.get()
		if err != nil {
			s = fmt.Sprintf("error: %v", err)
		}
		fmt.Fprintf(&b, "  %-8s %s\n", g.name+":", s)
	}
	return strings.TrimRight(b.String(), "\n")
}

// literalTags maps literal prefixes to builders for the scalar forms.
var literalTags = map[string]func(payload string) (variant.Value, error){
	"i1": func(s string) (variant.Value, error) {
		v, err := strconv.ParseInt(s, 10, 8)
		return variant.I1{Value: int8(v)}, err
	},
	"i2": func(s string) (variant.Value, error) {
		v, err := strconv.ParseInt(s, 10, 16)
		return variant.I2{Value: int16(v)}, err
	},
	"i4": func(s string) (variant.Value, error) {
		v, err := strconv.ParseInt(s, 10, 32)
		return variant.I4{Value: int32(v)}, err
	},
	"i8": func(s string) (variant.Value, error) {
		v, err := strconv.ParseInt(s, 10, 64)
		return variant.I8{Value: v}, err
	},
	"ui1": func(s string) (variant.Value, error) {
		v, err := strconv.ParseUint(s, 10, 8)
		return variant.UI1{Value: uint8(v)}, err
	},
	"ui2": func(s string) (variant.Value, error) {
		v, err := strconv.ParseUint(s, 10, 16)
		return variant.UI2{Value: uint16(v)}, err
	},
	"ui4": func(s string) (variant.Value, error) {
		v, err := strconv.ParseUint(s, 10, 32)
		return variant.UI4{Value: uint32(v)}, err
	},
	"ui8": func(s string) (variant.Value, error) {
		v, err := strconv.ParseUint(s, 10, 64)
		return variant.UI8{Value: v}, err
	},
	"r4": func(s string) (variant.Value, error) {
		v, err := strconv.ParseFloat(s, 32)
		return variant.R4{Value: float32(v)}, err
	},
	"r8": func(s string) (variant.Value, error) {
		v, err := strconv.ParseFloat(s, 64)
		return variant.R8{Value: v}, err
	},
	"cy": func(s string) (variant.Value, error) {
		// currency literals are decimal amounts, stored scaled by 1e4
		v, err := strconv.ParseFloat(s, 64)
		return variant.Currency{Value: int64(v * 1e4)}, err
	},
	"date": func(s string) (variant.Value, error) {
		v, err := strconv.ParseFloat(s, 64)
		return variant.Date{Value: v}, err
	},
	"bool": func(s string) (variant.Value, error) {
		v, err := strconv.ParseBool(s)
		return variant.Bool{Value: v}, err
	},
	"str": func(s string) (variant.Value, error) {
		return variant.String{Value: s}, nil
	},
	"hr": func(s string) (variant.Value, error) {
		v, err := strconv.ParseInt(s, 0, 32)
		return variant.HResult{Value: ole.HResult(v)}, err
	},
}

// parseLiteral turns "tag:payload" into a variant. The bare words empty
// and null build the corresponding null variants, and "tag[]:a,b,c"
// builds an array variant.
func parseLiteral(lit string) (variant.Variant, error) {
	switch lit {
	case "empty":
		return variant.FromValue(variant.Empty{})
	case "null":
		return variant.FromValue(variant.Null{})
	}

	tag, payload, ok := strings.Cut(lit, ":")
	if !ok {
		return variant.Variant{}, fmt.Errorf("literal %q is not tag:payload", lit)
	}

	if elem, isArray := strings.CutSuffix(tag, "[]"); isArray {
		return parseArrayLiteral(elem, payload)
	}

	build, ok := literalTags[tag]
	if !ok {
		return variant.Variant{}, fmt.Errorf("unknown literal tag %q", tag)
	}
	val, err := build(payload)
	if err != nil {
		return variant.Variant{}, fmt.Errorf("literal %q: %w", lit, err)
	}
	return variant.FromValue(val)
}

func parseArrayLiteral(elem, payload string) (variant.Variant, error) {
	var items []string
	if payload != "" {
		items = strings.Split(payload, ",")
	}

	switch elem {
	case "str":
		arr, err := safearray.FromStringVector(ole.VTBstr, items)
		if err != nil {
			return variant.Variant{}, err
		}
		return variant.FromValue(variant.SafeArray{Array: arr})
	case "bool":
		vals := make([]bool, len(items))
		for i, it := range items {
			b, err := strconv.ParseBool(strings.TrimSpace(it))
			if err != nil {
				return variant.Variant{}, fmt.Errorf("array element %q: %w", it, err)
			}
			vals[i] = b
		}
		arr, err := safearray.FromBoolVector(vals)
		if err != nil {
			return variant.Variant{}, err
		}
		return variant.FromValue(variant.SafeArray{Array: arr})
	case "i4":
		vals := make([]int32, len(items))
		for i, it := range items {
			n, err := strconv.ParseInt(strings.TrimSpace(it), 10, 32)
			if err != nil {
				return variant.Variant{}, fmt.Errorf("array element %q: %w", it, err)
			}
			vals[i] = int32(n)
		}
		arr, err := safearray.FromVector(ole.VTI4, vals)
		if err != nil {
			return variant.Variant{}, err
		}
		return variant.FromValue(variant.SafeArray{Array: arr})
	case "r8":
		vals := make([]float64, len(items))
		for i, it := range items {
			f, err := strconv.ParseFloat(strings.TrimSpace(it), 64)
			if err != nil {
				return variant.Variant{}, fmt.Errorf("array element %q: %w", it, err)
			}
			vals[i] = f
		}
		arr, err := safearray.FromVector(ole.VTR8, vals)
		if err != nil {
			return variant.Variant{}, err
		}
		return variant.FromValue(variant.SafeArray{Array: arr})
	default:
		return variant.Variant{}, fmt.Errorf("unsupported array element tag %q", elem)
	}
}

func printReference() {
	fmt.Println("Literal tags:")
	tags := make([]string, 0, len(literalTags))
	for tag := range literalTags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	fmt.Printf("  %s\n", strings.Join(tags, ", "))
	fmt.Println("  empty, null (bare words)")
	fmt.Println("  i4[], r8[], str[], bool[] (comma-separated arrays)")

	fmt.Println("\nOperations:")
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		op := operations[name]
		arity := "unary"
		if op.binary {
			arity = "binary"
		}
		fmt.Printf("  %-8s %-6s %s\n", name, arity, op.help)
	}
}
