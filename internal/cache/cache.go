// Package cache stores synthesized audio across utterances and sessions:
// a small in-memory tier in front of a zstd-compressed disk tier. Repeated
// playback of the same lecture then costs one synthesis per chunk total.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Config sizes the cache tiers. A zero Dir disables the disk tier; zero
// capacities fall back to defaults.
type Config struct {
	Dir              string
	MemoryCapacity   int64
	DiskCapacity     int64
	CompressionLevel int
}

// DefaultConfig returns the standard cache sizing.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:   32 << 20,  // 32 MB
		DiskCapacity:     256 << 20, // 256 MB
		CompressionLevel: 3,
	}
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits      int64
	Misses    int64
	MemoryUse int64
	DiskUse   int64
}

// Key derives the cache key for one utterance. Voice and rate are part of
// the identity: the same text at another rate is different audio.
func Key(text, voice string, rate float64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.3f", text, voice, rate)))
	return hex.EncodeToString(sum[:])
}

type memoryEntry struct {
	key  string
	data []byte
}

// Cache is safe for concurrent use.
type Cache struct {
	mu sync.Mutex

	memCapacity int64
	memSize     int64
	memIndex    map[string]*list.Element
	memOrder    *list.List // front = most recent

	dir          string
	diskCapacity int64
	diskSize     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	stats Stats
}

// New opens a cache. The disk tier's directory is created on demand and its
// current size recovered by scanning existing entries.
func New(cfg Config) (*Cache, error) {
	def := DefaultConfig()
	if cfg.MemoryCapacity <= 0 {
		cfg.MemoryCapacity = def.MemoryCapacity
	}
	if cfg.DiskCapacity <= 0 {
		cfg.DiskCapacity = def.DiskCapacity
	}
	if cfg.CompressionLevel <= 0 {
		cfg.CompressionLevel = def.CompressionLevel
	}

	c := &Cache{
		memCapacity:  cfg.MemoryCapacity,
		memIndex:     make(map[string]*list.Element),
		memOrder:     list.New(),
		dir:          cfg.Dir,
		diskCapacity: cfg.DiskCapacity,
	}

	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0o755); err != nil {
			return nil, fmt.Errorf("unable to create cache directory: %w", err)
		}
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(cfg.CompressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("unable to create zstd encoder: %w", err)
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			enc.Close()
			return nil, fmt.Errorf("unable to create zstd decoder: %w", err)
		}
		c.encoder = enc
		c.decoder = dec
		c.diskSize = c.scanDiskSize()
	}

	return c, nil
}

// Get returns the cached audio for key, checking memory before disk. A disk
// hit is promoted back into the memory tier.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.memIndex[key]; ok {
		c.memOrder.MoveToFront(el)
		c.stats.Hits++
		return el.Value.(*memoryEntry).data, true
	}

	if c.dir != "" {
		if data, ok := c.readDisk(key); ok {
			c.putMemory(key, data)
			c.stats.Hits++
			return data, true
		}
	}

	c.stats.Misses++
	return nil, false
}

// Put stores audio in both tiers. Disk write failures are non-fatal: the
// entry still lands in memory.
func (c *Cache) Put(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.putMemory(key, data)
	if c.dir == "" {
		return nil
	}
	return c.writeDisk(key, data)
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.MemoryUse = c.memSize
	s.DiskUse = c.diskSize
	return s
}

// Close releases the compression codecs. Cached files stay on disk for the
// next session.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.encoder != nil {
		c.encoder.Close()
		c.encoder = nil
	}
	if c.decoder != nil {
		c.decoder.Close()
		c.decoder = nil
	}
	return nil
}

// putMemory inserts into the memory tier, evicting least-recently-used
// entries until the new entry fits. Callers hold c.mu.
func (c *Cache) putMemory(key string, data []byte) {
	if int64(len(data)) > c.memCapacity {
		return
	}
	if el, ok := c.memIndex[key]; ok {
		c.memSize += int64(len(data)) - int64(len(el.Value.(*memoryEntry).data))
		el.Value.(*memoryEntry).data = data
		c.memOrder.MoveToFront(el)
	} else {
		c.memIndex[key] = c.memOrder.PushFront(&memoryEntry{key: key, data: data})
		c.memSize += int64(len(data))
	}

	for c.memSize > c.memCapacity {
		oldest := c.memOrder.Back()
		if oldest == nil {
			break
		}
		entry := oldest.Value.(*memoryEntry)
		c.memOrder.Remove(oldest)
		delete(c.memIndex, entry.key)
		c.memSize -= int64(len(entry.data))
	}
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".zst")
}

func (c *Cache) readDisk(key string) ([]byte, bool) {
	if c.decoder == nil {
		return nil, false
	}
	compressed, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		return nil, false
	}
	data, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		// Corrupt entry; drop it so it re-synthesizes cleanly.
		_ = os.Remove(c.entryPath(key))
		return nil, false
	}
	return data, true
}

func (c *Cache) writeDisk(key string, data []byte) error {
	if c.encoder == nil {
		return nil
	}
	compressed := c.encoder.EncodeAll(data, nil)

	path := c.entryPath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return fmt.Errorf("unable to write cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("unable to commit cache entry: %w", err)
	}

	c.diskSize += int64(len(compressed))
	if c.diskSize > c.diskCapacity {
		c.evictDisk()
	}
	return nil
}

// evictDisk removes the oldest entries until the disk tier fits its
// capacity again. Callers hold c.mu.
func (c *Cache) evictDisk() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}

	type fileAge struct {
		path string
		size int64
		mod  int64
	}
	var files []fileAge
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".zst") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileAge{
			path: filepath.Join(c.dir, e.Name()),
			size: info.Size(),
			mod:  info.ModTime().UnixNano(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod < files[j].mod })

	for _, f := range files {
		if c.diskSize <= c.diskCapacity {
			return
		}
		if err := os.Remove(f.path); err == nil {
			c.diskSize -= f.size
		}
	}
}

func (c *Cache) scanDiskSize() int64 {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".zst") {
			continue
		}
		if info, err := e.Info(); err == nil {
			total += info.Size()
		}
	}
	return total
}
