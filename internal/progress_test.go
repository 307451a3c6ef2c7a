package internal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func TestShowProgress(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		message string
		fn      func() error
		wantErr bool
	}{
		{
			name:    "successful function",
			message: "Thinking",
			fn: func() error {
				return nil
			},
			wantErr: false,
		},
		{
			name:    "function with error",
			message: "Thinking",
			fn: func() error {
				return errors.New("test error")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ShowProgress(ctx, tt.message, tt.fn)
			if (err != nil) != tt.wantErr {
				t.Errorf("ShowProgress() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunWithSpinner_DrawsAndClears(t *testing.T) {
	var out syncBuffer
	err := runWithSpinner(context.Background(), &out, "Thinking", func() error {
		time.Sleep(250 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("runWithSpinner() error = %v", err)
	}

	out.mu.Lock()
	defer out.mu.Unlock()
	if !bytes.Contains(out.buf.Bytes(), []byte("Thinking")) {
		t.Errorf("spinner output should contain the message, got %q", out.buf.String())
	}
	if !bytes.HasSuffix(out.buf.Bytes(), []byte("\r")) {
		t.Errorf("spinner output should end by returning the cursor, got %q", out.buf.String())
	}
}

func TestRunWithSpinner_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	err := runWithSpinner(ctx, &syncBuffer{}, "Thinking", func() error {
		<-release
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("runWithSpinner() error = %v, want deadline exceeded", err)
	}
}

func TestPrintFunctions(t *testing.T) {
	PrintSuccess("ok")
	PrintError("bad")
	PrintInfo("info")
	PrintWarning("careful")
}

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	defer f.Close()

	if isTerminal(f) {
		t.Error("a regular file should not be a terminal")
	}
	if isTerminal(&bytes.Buffer{}) {
		t.Error("a buffer should not be a terminal")
	}
}
