package servers

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/pkg/filesystem"
	"github.com/doeshing/infernav/internal/ports"
)

// FileStore keeps server addresses in a newline-delimited text file.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger ports.Logger
}

// NewFileStore creates a store for the list at path.
func NewFileStore(path string, logger ports.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the list in file order, skipping blank lines. A missing file is
// created empty; any read failure yields an empty list.
func (f *FileStore) Load() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.createEmpty()
			return []string{}
		}
		f.warn("server list unreadable", err)
		return []string{}
	}
	return parseList(data)
}

func parseList(data []byte) []string {
	addresses := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		addresses = append(addresses, line)
	}
	return addresses
}

func (f *FileStore) createEmpty() {
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		f.warn("create server list dir", err)
		return
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, domain.FilePermissions)
	if err != nil {
		if !errors.Is(err, os.ErrExist) {
			f.warn("create server list", err)
		}
		return
	}
	file.Close()
}

// Save rewrites the whole file with addresses in the given order.
func (f *FileStore) Save(addresses []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var buf bytes.Buffer
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		buf.WriteString(addr)
		buf.WriteByte('\n')
	}
	if err := filesystem.WriteFileAtomic(f.path, buf.Bytes(), domain.FilePermissions); err != nil {
		return fmt.Errorf("save server list: %w", err)
	}
	return nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) warn(msg string, err error) {
	if f.logger == nil {
		return
	}
	f.logger.Warn(msg, map[string]interface{}{"path": f.path, "error": err.Error()})
}

var _ ports.ServerListStore = (*FileStore)(nil)
