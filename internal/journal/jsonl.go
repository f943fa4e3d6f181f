package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
)

// JsonlJournal appends launch and trade records to a JSONL file.
type JsonlJournal struct {
	path string
	mu   sync.Mutex
}

func NewJsonlJournal(path string) *JsonlJournal {
	return &JsonlJournal{path: path}
}

type jsonlLine struct {
	Kind   string      `json:"kind"`
	Record interface{} `json:"record"`
}

func (j *JsonlJournal) RecordLaunch(_ context.Context, launch model.LaunchRecord) error {
	return j.append(jsonlLine{Kind: "launch", Record: launch})
}

func (j *JsonlJournal) RecordTrade(_ context.Context, trade model.TradeRecord) error {
	return j.append(jsonlLine{Kind: "trade", Record: trade})
}

func (j *JsonlJournal) append(line jsonlLine) error {
	dir := filepath.Dir(j.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	data, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("marshal journal line: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("write journal line: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}

	return nil
}
