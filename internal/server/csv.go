package server

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/festapp/telao/internal/game"
)

// parseQuestionsCSV reads rows of prompt,answer,category into question
// inputs. The first row is treated as a header when it looks like one,
// and rows with a blank prompt are skipped.
func parseQuestionsCSV(r io.Reader) ([]game.QuestionInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}

	input := make([]game.QuestionInput, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		prompt := strings.TrimSpace(row[0])
		if i == 0 && strings.EqualFold(prompt, "prompt") {
			continue
		}
		if prompt == "" {
			continue
		}

		q := game.QuestionInput{Prompt: prompt}
		if len(row) > 1 {
			q.Answer = strings.TrimSpace(row[1])
		}
		if len(row) > 2 {
			q.Category = strings.TrimSpace(row[2])
		}
		input = append(input, q)
	}
	return input, nil
}

func generateQuestionsCSV(w io.Writer, questions []game.Question) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"prompt", "answer", "category"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, q := range questions {
		if err := writer.Write([]string{q.Prompt, q.Answer, q.Category}); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
