package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/carelearn/phicore-go/core"
	"github.com/carelearn/phicore-go/gen"
	"github.com/carelearn/phicore-go/jobs"
)

func main() {
	// Optional .env for MCP generator settings
	_ = godotenv.Load()

	input := "Contact me at 555-123-4567 or jane@example.com on 01/02/2020. " +
		"Our safety policy requires annual review."

	scanner := core.NewScanner()
	result := scanner.Scan(input)

	fmt.Println("Findings:")
	for _, f := range result.Findings {
		fmt.Printf(" - %s: %q at offset %d\n", f.Kind, f.Value, f.Offset)
	}

	fmt.Println("\nRedacted:")
	fmt.Println(scanner.Redact(input, result.Findings))

	fmt.Println("\nMapping suggestions:")
	catalog := core.DefaultCatalog()
	for _, s := range core.NewSuggester(catalog).Suggest(input) {
		standard, _ := catalog.Standard(s.StandardID)
		fmt.Printf(" - %s (%s, confidence %.2f): %s\n",
			s.StandardID, standard.Description, s.Confidence, s.Snippet)
	}

	store := jobs.NewMemoryStore()
	runner := jobs.NewRunner(store, jobs.Options{Workers: 2})
	defer runner.Close()

	runner.Register(jobs.TypeGenerateDraft, gen.DraftAction(store, gen.NewStaticGenerator()))

	task, err := runner.Submit(context.Background(), jobs.TypeGenerateDraft, gen.DraftPayload{
		DocumentVersionID: "docver-1",
		UserID:            "user-1",
		DocumentText:      input,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error submitting task: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nSubmitted task %s (%s)\n", task.ID, task.Status)

	for {
		time.Sleep(50 * time.Millisecond)
		task, err = runner.Task(context.Background(), task.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error polling task: %v\n", err)
			os.Exit(1)
		}
		if task.Status.Terminal() {
			break
		}
	}

	fmt.Printf("Task finished: %s\n", task.Status)
	if task.Result != nil {
		fmt.Printf("Result: %s\n", task.Result)
	}
}
