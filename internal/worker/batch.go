package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
)

// Checker defines the interface for checking a single statement.
type Checker interface {
	Check(ctx context.Context, statement string) model.FactCheckRecord
}

// CheckJob represents one statement check.
type CheckJob struct {
	Statement string
	Checker   Checker
}

// Execute runs the check.
func (j *CheckJob) Execute(ctx context.Context) Result {
	record := j.Checker.Check(ctx, j.Statement)
	return &CheckResult{
		Statement: j.Statement,
		Record:    record,
	}
}

// CheckResult represents the result of a check job. A checker never
// fails outright, so Err is only set for pool-level problems.
type CheckResult struct {
	Statement string
	Record    model.FactCheckRecord
	Err       error
}

// GetError returns the error from the check result.
func (r *CheckResult) GetError() error {
	return r.Err
}

// BatchProcessor checks multiple statements concurrently.
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessStatements checks the given statements concurrently. Order of
// results is completion order; no ordering guarantee exists across
// concurrently submitted claims.
func (b *BatchProcessor) ProcessStatements(ctx context.Context, statements []string) []*CheckResult {
	if len(statements) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, statement := range statements {
		pool.Submit(&CheckJob{
			Statement: statement,
			Checker:   b.checker,
		})
	}

	results := pool.Wait()

	checkResults := make([]*CheckResult, len(results))
	for i, result := range results {
		checkResults[i] = result.(*CheckResult)
	}

	return checkResults
}

// ProcessFile reads statements from a file (one per line) and checks
// them concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckResult, error) {
	statements, err := ReadStatementsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read statements: %w", err)
	}

	return b.ProcessStatements(ctx, statements), nil
}

// ReadStatementsFromFile reads statements from a file, one per line,
// skipping blanks and # comments and dropping duplicates.
func ReadStatementsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var statements []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			statements = append(statements, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return statements, nil
}
