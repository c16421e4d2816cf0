package tradelog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"goldbees-trader/internal/interfaces"
	"goldbees-trader/internal/types"
)

var ist = time.FixedZone("IST", 19800)

// Log appends completed round trips as JSON lines, one file per IST day
// under <dir>/trades.
type Log struct {
	dir string
	mu  sync.Mutex
}

var _ interfaces.TradeLedger = (*Log)(nil)

func New(dir string) *Log {
	if dir == "" {
		dir = "logs"
	}
	return &Log{dir: dir}
}

func (l *Log) Dir() string { return l.dir }

func (l *Log) dailyFilepath(t time.Time) string {
	d := t.In(ist).Format("2006-01-02")
	return filepath.Join(l.dir, "trades", d+".txt")
}

func (l *Log) Record(ctx context.Context, rec types.TradeRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	rec.Time = rec.Time.In(ist)

	p := l.dailyFilepath(rec.Time)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// ReadDay returns the records written for the IST day containing t. A day
// with no file yields no records.
func (l *Log) ReadDay(t time.Time) ([]types.TradeRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.dailyFilepath(t))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []types.TradeRecord
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec types.TradeRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", f.Name(), line, err)
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}

// CompressOlder gzips day files whose modification time is older than
// retentionDays and removes the originals.
func (l *Log) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	root := filepath.Join(l.dir, "trades")
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := d.Info()
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		// if already gz exists, remove original .txt
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}
		if err := gzipFile(p, gz); err != nil {
			return nil
		}
		_ = os.Remove(p)
		return nil
	})
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	_, err = io.Copy(gw, in)
	if cerr := gw.Close(); err == nil {
		err = cerr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
	}
	return err
}
