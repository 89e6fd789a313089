// End-to-end interview run over HTTP with no LLM providers configured:
// scoring degrades to neutral and follow-ups come from the fallback pools,
// so the whole arc must still reach completion.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hazyhaar/lifeweave/internal/api"
	"github.com/hazyhaar/lifeweave/internal/auth"
	"github.com/hazyhaar/lifeweave/internal/db"
	"github.com/hazyhaar/lifeweave/internal/interview"
	"github.com/hazyhaar/lifeweave/internal/llm"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := llm.NewClient(nil)

	eval, err := interview.NewEvaluator(llm.NewSemanticScorer(client, "", 0), 64, logger)
	if err != nil {
		t.Fatal(err)
	}
	engine := interview.NewEngine(interview.EngineConfig{
		Store:         database,
		Evaluator:     eval,
		Selector:      interview.NewSelector(llm.NewQuestionGenerator(client, "", 0), logger),
		Gate:          interview.Gate{MinAnswers: 1000, MinTotalChars: 1000000},
		SynthesisGate: interview.Gate{MinAnswers: 1000, MinTotalChars: 1000000},
		MaxPerTheme:   2,
		MaxPerStory:   1,
		Logger:        logger,
	})

	handler := api.New(database, auth.New("e2e-secret", 60), engine, llm.NewBiographer(client, "", 0))
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := httptest.NewServer(api.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var m map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&m)
	return resp.StatusCode, m
}

func TestFullArcWithoutProviders(t *testing.T) {
	srv := startServer(t)

	status, body := call(t, srv, "POST", "/api/register", "", map[string]string{
		"handle": "arc_user", "password": "arc-user-1234",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: %d %v", status, body)
	}
	token := body["token"].(string)

	themes := []string{"childhood", "education", "career", "family", "dreams"}
	var seen []string
	answered := 0

	for i := 0; i < 50; i++ {
		status, body = call(t, srv, "GET", "/api/interview/next", token, nil)
		if status != http.StatusOK {
			t.Fatalf("next: %d %v", status, body)
		}
		if done, _ := body["completed"].(bool); done {
			break
		}
		q := body["question"].(map[string]any)
		theme := q["theme"].(string)
		if len(seen) == 0 || seen[len(seen)-1] != theme {
			seen = append(seen, theme)
		}

		status, body = call(t, srv, "POST", "/api/interview/answer", token, map[string]string{
			"question_id": q["id"].(string),
			"text":        fmt.Sprintf("answer %d about a long afternoon by the river", i),
		})
		if status != http.StatusOK {
			t.Fatalf("answer %d: %d %v", i, status, body)
		}
		answered++
	}

	// 2 questions per theme, 5 themes.
	if answered != 10 {
		t.Errorf("answered %d questions, want 10", answered)
	}
	for i, theme := range themes {
		if i >= len(seen) || seen[i] != theme {
			t.Fatalf("theme arc %v, want %v", seen, themes)
		}
	}

	status, body = call(t, srv, "GET", "/api/interview/next", token, nil)
	if status != http.StatusOK || body["completed"] != true {
		t.Errorf("after the arc: %d %v, want completed", status, body)
	}

	status, body = call(t, srv, "GET", "/api/interview/progress", token, nil)
	if status != http.StatusOK {
		t.Fatalf("progress: %d", status)
	}
	if body["state"] != "completed" || body["answer_count"] != float64(10) {
		t.Errorf("final progress = %v", body)
	}
	// Neutral scoring keeps AQI at exactly 0.5 throughout.
	if aqi := body["average_aqi"].(float64); aqi < 0.49 || aqi > 0.51 {
		t.Errorf("average aqi = %v, want 0.5", aqi)
	}
}
