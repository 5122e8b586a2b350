// Package testutils generates fake movie record fixtures for testing the
// pipeline without real input data.
package testutils

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/cinevec/cinevec/pkg/models"
)

// GenerateMovieRecords creates count fake movie records with stable, unique
// IDs. Roughly one in ten records gets a long multi-sentence overview so
// fixtures exercise the multi-chunk path.
func GenerateMovieRecords(count int) []models.Record {
	fakerGlobal := gofakeit.NewUnlocked(0)
	gofakeit.SetGlobalFaker(fakerGlobal)

	records := make([]models.Record, count)
	for i := range records {
		sentences := gofakeit.Number(1, 4)
		if i%10 == 0 {
			sentences = gofakeit.Number(30, 60)
		}

		overview := ""
		for s := 0; s < sentences; s++ {
			overview += gofakeit.Sentence(gofakeit.Number(8, 16)) + " "
		}

		records[i] = models.Record{
			ID:       fmt.Sprintf("tt%07d", i),
			Title:    gofakeit.MovieName(),
			Overview: overview,
		}
	}
	return records
}

// GenerateFixtureData writes count fake movie records as JSONL to
// outputPath.
func GenerateFixtureData(count int, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create fixture file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, record := range GenerateMovieRecords(count) {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to write fixture record: %w", err)
		}
	}
	return nil
}
