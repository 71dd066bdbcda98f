// Package presales enriches requirement spreadsheets (CSV) with
// model-generated compliance responses. Each row's requirement text is
// assessed independently; answers are cached so repeated requirements do
// not trigger repeated model calls.
package presales

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"draftdesk/internal/ai"
)

// ErrFileNotFound is returned for unknown upload or result IDs.
var ErrFileNotFound = errors.New("presales: file not found or expired")

// ErrNoRows rejects spreadsheets without data rows.
var ErrNoRows = errors.New("presales: spreadsheet has no data rows")

const (
	maxConcurrentRows   = 5
	cacheTTL            = time.Hour
	cacheMaxEntries     = 1000
	minRequirementWords = 5
)

const analysisSystemPrompt = "You are an expert solutions analyst for banking and fintech procurement. " +
	"You provide evidence-based, unbiased assessments of technical requirements against platform capabilities.\n\n" +
	"Evaluate each requirement independently and provide decisive responses:\n" +
	"- Yes: Strong evidence of full support\n" +
	"- Partially: Clear evidence of limited/conditional support\n" +
	"- No: Strong evidence of no support or incompatibility\n" +
	"- Not found: Insufficient evidence for determination\n\n" +
	"Generate professional, descriptive explanations as a subject matter expert."

// ProcessRequest names the uploaded file and the columns to read and fill.
type ProcessRequest struct {
	InputColumns  []string `json:"input_columns"`
	OutputColumns []string `json:"output_columns"`
	Filename      string   `json:"filename"`
	UserPrompt    string   `json:"user_prompt,omitempty"`
}

// UploadResponse reports metadata for an accepted spreadsheet.
type UploadResponse struct {
	Filename         string   `json:"filename"`
	Columns          []string `json:"columns"`
	RowCount         int      `json:"row_count"`
	OriginalFilename string   `json:"original_filename"`
}

// ProcessStats summarizes one enrichment run.
type ProcessStats struct {
	TotalRows    int `json:"total_rows"`
	SkippedRows  int `json:"skipped_rows"`
	CacheEntries int `json:"cache_entries"`
}

// ProcessResponse reports a completed enrichment.
type ProcessResponse struct {
	FileID  string       `json:"file_id"`
	Message string       `json:"message"`
	Stats   ProcessStats `json:"processing_stats"`
}

// Service runs the presales enrichment pipeline.
type Service struct {
	client ai.Client
	logger *zap.Logger
	cache  *Cache[string, string]

	mu             sync.Mutex
	tempFiles      map[string][]byte
	processedFiles map[string][]byte
}

// New creates the presales service.
func New(client ai.Client, logger *zap.Logger) *Service {
	return &Service{
		client:         client,
		logger:         logger,
		cache:          NewCache[string, string](cacheTTL, WithMaxSize[string, string](cacheMaxEntries)),
		tempFiles:      make(map[string][]byte),
		processedFiles: make(map[string][]byte),
	}
}

// Upload validates and stages a CSV spreadsheet, returning its column
// layout.
func (s *Service) Upload(content []byte, filename string) (UploadResponse, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return UploadResponse{}, fmt.Errorf("presales: only .csv files are supported, got %q", filename)
	}

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	if err != nil {
		return UploadResponse{}, fmt.Errorf("presales: parse %s: %w", filename, err)
	}
	if len(records) < 2 {
		return UploadResponse{}, ErrNoRows
	}

	staged := fmt.Sprintf("temp_%s_%s", time.Now().Format("20060102_150405"), filename)
	s.mu.Lock()
	s.tempFiles[staged] = content
	s.mu.Unlock()

	return UploadResponse{
		Filename:         staged,
		Columns:          records[0],
		RowCount:         len(records) - 1,
		OriginalFilename: filename,
	}, nil
}

// Process enriches the staged spreadsheet. Rows run concurrently with a
// bounded worker count; row failures are written into the output columns
// rather than aborting the run.
func (s *Service) Process(ctx context.Context, req ProcessRequest) (ProcessResponse, error) {
	s.mu.Lock()
	content, ok := s.tempFiles[req.Filename]
	s.mu.Unlock()
	if !ok {
		return ProcessResponse{}, ErrFileNotFound
	}

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	if err != nil {
		return ProcessResponse{}, fmt.Errorf("presales: parse staged file: %w", err)
	}
	if len(records) < 2 {
		return ProcessResponse{}, ErrNoRows
	}

	header := normalizeColumns(records[0])
	inputCols := normalizeColumns(req.InputColumns)
	outputCols := normalizeColumns(req.OutputColumns)

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[name] = i
	}

	// Append missing output columns to the sheet.
	for _, col := range outputCols {
		if _, exists := colIndex[col]; !exists {
			colIndex[col] = len(header)
			header = append(header, col)
		}
	}

	rows := make([][]string, len(records)-1)
	for i, rec := range records[1:] {
		row := make([]string, len(header))
		copy(row, rec)
		rows[i] = row
	}

	s.logger.Info("presales processing started",
		zap.String("file", req.Filename),
		zap.Int("rows", len(rows)),
	)

	var skipped int
	var skippedMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRows)
	for i := range rows {
		g.Go(func() error {
			values, skip := s.processRow(gctx, i, rows[i], colIndex, inputCols, outputCols, req.UserPrompt)
			if skip {
				skippedMu.Lock()
				skipped++
				skippedMu.Unlock()
			}
			for col, val := range values {
				rows[i][colIndex[col]] = val
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ProcessResponse{}, fmt.Errorf("presales: process rows: %w", err)
	}

	var out bytes.Buffer
	w := csv.NewWriter(&out)
	if err := w.Write(header); err != nil {
		return ProcessResponse{}, fmt.Errorf("presales: write output: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return ProcessResponse{}, fmt.Errorf("presales: write output: %w", err)
	}

	fileID := uuid.NewString()
	s.mu.Lock()
	s.processedFiles[fileID] = out.Bytes()
	delete(s.tempFiles, req.Filename)
	s.mu.Unlock()

	s.logger.Info("presales processing complete",
		zap.String("file_id", fileID),
		zap.Int("rows", len(rows)),
	)

	return ProcessResponse{
		FileID:  fileID,
		Message: fmt.Sprintf("Presales analysis completed successfully - %d rows analyzed", len(rows)),
		Stats: ProcessStats{
			TotalRows:    len(rows),
			SkippedRows:  skipped,
			CacheEntries: s.cache.Size(),
		},
	}, nil
}

// processRow assesses one requirement row. The returned map holds values
// for the output columns; skip reports whether the row had too little
// content to analyze.
func (s *Service) processRow(ctx context.Context, index int, row []string, colIndex map[string]int, inputCols, outputCols []string, userPrompt string) (map[string]string, bool) {
	inputData := make(map[string]string)
	for _, col := range inputCols {
		idx, ok := colIndex[col]
		if !ok || idx >= len(row) {
			continue
		}
		if val := strings.TrimSpace(row[idx]); val != "" {
			inputData[col] = val
		}
	}

	var parts []string
	for _, col := range inputCols {
		if val, ok := inputData[col]; ok {
			parts = append(parts, val)
		}
	}
	inputText := strings.Join(parts, " ")

	if len(strings.Fields(inputText)) < minRequirementWords {
		s.logger.Warn("row skipped, insufficient content", zap.Int("row", index+1))
		values := make(map[string]string, len(outputCols))
		for _, col := range outputCols {
			values[col] = "Insufficient content for analysis"
		}
		return values, true
	}

	prompt := buildRowPrompt(inputData, inputCols, outputCols, userPrompt)

	answer, cached := s.cache.Get(cacheKey(prompt))
	if !cached {
		resp, err := s.client.Complete(ctx, ai.Request{
			System:      analysisSystemPrompt,
			Prompt:      prompt,
			MaxTokens:   1200,
			Temperature: 0.1,
		})
		if err != nil {
			s.logger.Error("row analysis failed", zap.Int("row", index+1), zap.Error(err))
			values := make(map[string]string, len(outputCols))
			msg := err.Error()
			if len(msg) > 150 {
				msg = msg[:150] + "..."
			}
			for _, col := range outputCols {
				values[col] = "Processing error: " + msg
			}
			return values, false
		}
		answer = resp.Text
		s.cache.Set(cacheKey(prompt), answer)
	} else {
		s.logger.Debug("using cached analysis", zap.Int("row", index+1))
	}

	return extractColumnValues(answer, outputCols), false
}

func buildRowPrompt(inputData map[string]string, inputCols, outputCols []string, userPrompt string) string {
	var b strings.Builder
	if userPrompt != "" {
		fmt.Fprintf(&b, "User Instructions: %s\n\n", userPrompt)
	}
	b.WriteString("Requirement:\n")
	for _, col := range inputCols {
		val, ok := inputData[col]
		if !ok {
			continue
		}
		if len(val) > 300 {
			val = val[:300]
		}
		fmt.Fprintf(&b, "%s: %s\n", col, val)
	}
	fmt.Fprintf(&b, "\nRequired Output Columns: %s\n\n", strings.Join(outputCols, ", "))
	b.WriteString("Provide structured response with column names and values, plus an EXPLANATION section.")
	return b.String()
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(sum[:])
}

func normalizeColumns(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	return out
}

// ProcessedFile returns an enriched spreadsheet by result ID.
func (s *Service) ProcessedFile(id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.processedFiles[id]
	if !ok {
		return nil, ErrFileNotFound
	}
	return content, nil
}

// CacheStats reports answer cache occupancy.
func (s *Service) CacheStats() map[string]int {
	return map[string]int{"entries": s.cache.Size()}
}

// ClearCache drops all cached answers and returns how many were removed.
func (s *Service) ClearCache() int {
	return s.cache.Clear()
}
