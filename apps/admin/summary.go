package main

import (
	"fmt"
	"text/tabwriter"
)

func (cli *commandLine) summary() {
	doc := cli.state.Snapshot()

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "users\t%d\n", len(doc.Users))
	fmt.Fprintf(w, "grades\t%d\n", len(doc.Grades))
	fmt.Fprintf(w, "classes\t%d\n", len(doc.Classes))
	fmt.Fprintf(w, "learners\t%d\n", len(doc.Learners))
	fmt.Fprintf(w, "tasks\t%d\n", len(doc.Tasks))
	fmt.Fprintf(w, "annotations\t%d\n", len(doc.Annotations))
	_ = w.Flush()
}
