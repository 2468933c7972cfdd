package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"docquiz"
)

func main() {
	var (
		file       = flag.String("file", "", "Text file with the document content (required)")
		questions  = flag.Int("questions", docquiz.DefaultNumQuestions, "Number of questions to generate")
		difficulty = flag.String("difficulty", "medium", "Difficulty level (easy, medium, hard)")
		outputFile = flag.String("output", "", "Output file for quiz JSON (default: stdout)")
		apiKey     = flag.String("api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	docquiz.SetVerbose(*verbose)

	if *file == "" {
		log.Fatal("Document file is required. Use -file flag.")
	}

	// Get API key from flag or environment
	if *apiKey == "" {
		*apiKey = os.Getenv("OPENAI_API_KEY")
		if *apiKey == "" {
			log.Fatal("OpenAI API key is required. Use -api-key flag or set OPENAI_API_KEY environment variable.")
		}
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read document file: %v", err)
	}

	req := docquiz.GenerationRequest{
		DocumentText: string(data),
		NumQuestions: docquiz.ClampNumQuestions(*questions),
		Difficulty:   docquiz.ParseDifficulty(*difficulty),
	}

	if *verbose {
		log.Printf("Generating %d %s questions from %s (%d characters)",
			req.NumQuestions, req.Difficulty, *file, len(req.DocumentText))
	}

	client := docquiz.NewOpenAIClient(*apiKey)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	raw, err := client.Generate(ctx, docquiz.BuildPrompt(req))
	if err != nil {
		log.Fatalf("Failed to generate quiz: %v", err)
	}

	quiz, err := docquiz.NormalizeQuestions(raw)
	if err != nil {
		log.Fatalf("Failed to parse generated questions: %v", err)
	}

	output, err := json.MarshalIndent(quiz, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal quiz: %v", err)
	}

	if *outputFile != "" {
		err = os.WriteFile(*outputFile, output, 0644)
		if err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Printf("Quiz saved to: %s", *outputFile)
	} else {
		fmt.Println(string(output))
	}
}
