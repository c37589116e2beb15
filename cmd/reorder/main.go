package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/reorderly/backend-go/internal/engine"
	"github.com/reorderly/backend-go/internal/service"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "reorder",
		Usage: "Compute reorder recommendations from a local sales/inventory export",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the recommendation engine over a CSV or XLSX file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Usage:    "Path to the sales/inventory history file",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "horizon",
						Usage: "Forecast horizon in days",
						Value: engine.DefaultHorizonDays,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: csv or json",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output file path (stdout when empty)",
					},
				},
				Action: runReport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runReport(c *cli.Context) error {
	input := c.String("input")
	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	recService := service.NewRecommendationService(engine.New())
	recs, err := recService.ComputeFromUpload(c.Context, in, input, c.Int("horizon"))
	if err != nil {
		return err
	}

	out := os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch c.String("format") {
	case "csv":
		if err := recService.ExportCSV(out, recs); err != nil {
			return fmt.Errorf("failed to write CSV report: %w", err)
		}
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(recs); err != nil {
			return fmt.Errorf("failed to write JSON report: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q (want csv or json)", c.String("format"))
	}

	log.Printf("wrote %d recommendations for %s", len(recs), input)
	return nil
}
