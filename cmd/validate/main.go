// Command validate loads the embedded game content, runs the full
// cross-reference validation, and lints catalog ids for format. It is
// the pre-commit gate for content changes.
package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jit-rpg/engine/pkg/content"
)

func main() {
	fmt.Println("Validating game content...")

	bundle, err := content.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed:\n%v\n", err)
		os.Exit(1)
	}

	lint := &idLinter{}
	lint.checkBundle(bundle)

	if len(lint.errors) > 0 {
		fmt.Fprintf(os.Stderr, "ID format errors:\n%s\n", strings.Join(lint.errors, "\n"))
		os.Exit(1)
	}

	fmt.Printf("Content is valid: %d items, %d entities, %d quests, %d dialogs, %d maps.\n",
		len(bundle.ItemIDs()), len(bundle.EntityIDs()), len(bundle.QuestIDs()),
		len(bundle.DialogIDs()), len(bundle.MapIDs()))
}

type idLinter struct {
	errors []string
}

func (l *idLinter) checkBundle(b *content.Bundle) {
	for _, id := range b.ItemIDs() {
		l.checkID("item", id)
	}
	for _, id := range b.EntityIDs() {
		l.checkID("entity", id)
	}
	for _, id := range b.QuestIDs() {
		l.checkID("quest", id)
		q, _ := b.Quest(id)
		for stageID := range q.Stages {
			l.checkID("quest stage", stageID)
		}
	}
	for _, id := range b.DialogIDs() {
		l.checkID("dialog", id)
		d, _ := b.Dialog(id)
		for nodeID := range d.Nodes {
			l.checkID("dialog node", nodeID)
		}
	}
	for _, id := range b.MapIDs() {
		l.checkID("map", id)
		m, _ := b.Map(id)
		for spawn := range m.Spawns {
			l.checkID("spawn point", spawn)
		}
	}
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z0-9]$`)

func (l *idLinter) checkID(kind, id string) {
	if !validIDRegex.MatchString(id) {
		l.errors = append(l.errors, fmt.Sprintf("  - %s id %q should be lowercase snake_case", kind, id))
	}
}
