package cli

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"text/tabwriter"
	"time"
)

// maxCellLen mirrors original_source/cli.rs's PRETTY_TABLE_MAX_CELL_LEN:
// no table-rendering library appears anywhere in the retrieved pack, so
// this one ambient concern is built on the standard library (DESIGN.md).
const maxCellLen = 50

// renderTable prints items (a slice of struct pointers, e.g. []*model.Task)
// as a tab-aligned table, one column per exported field, truncating any
// cell beyond maxCellLen.
func renderTable(items interface{}) {
	v := reflect.ValueOf(items)
	if v.Kind() != reflect.Slice || v.Len() == 0 {
		fmt.Println("(no rows)")
		return
	}

	elemType := v.Index(0).Type()
	for elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fields := make([]string, elemType.NumField())
	for i := range fields {
		fields[i] = elemType.Field(i).Name
	}
	fmt.Fprintln(w, strings.Join(fields, "\t"))

	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		for item.Kind() == reflect.Ptr {
			item = item.Elem()
		}

		cells := make([]string, item.NumField())
		for j := range cells {
			cells[j] = truncate(formatField(item.Field(j)))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
}

func formatField(f reflect.Value) string {
	if f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return ""
		}
		f = f.Elem()
	}

	if t, ok := f.Interface().(time.Time); ok {
		return t.Format(time.RFC3339)
	}

	return fmt.Sprintf("%v", f.Interface())
}

func truncate(s string) string {
	if len(s) <= maxCellLen {
		return s
	}
	return s[:maxCellLen] + "..."
}
