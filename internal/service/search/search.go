package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/quizhub/quiz_platform/internal/models"
)

const ExamIndex = "exams"

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error: %s: %s", res.Status(), body)
	}

	return client, nil
}

// SearchExams runs a fuzzy multi-match over exam titles, categories and
// descriptions.
func SearchExams(ctx context.Context, es *elasticsearch.Client, query string, from, size int) (int64, []models.Exam, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "category", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(ExamIndex),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search exams: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search exams: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Exam `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	exams := make([]models.Exam, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		exams[i] = hit.Source
	}
	return r.Hits.Total.Value, exams, nil
}

// IndexExam upserts one exam document; called after create/update/approve.
func IndexExam(ctx context.Context, es *elasticsearch.Client, exam *models.Exam) error {
	data, err := json.Marshal(exam)
	if err != nil {
		return fmt.Errorf("marshal exam: %w", err)
	}

	res, err := es.Index(
		ExamIndex,
		bytes.NewReader(data),
		es.Index.WithDocumentID(exam.ID),
		es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index exam: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index exam: %s", res.Status())
	}
	return nil
}
