package analyze

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"locktrace/internal/maps"
)

// SymbolResolver resolves instruction addresses to human-readable strings
// by shelling out to an external resolver subprocess (spec §1: "the
// symbol resolver (a child process is invoked with an address; it returns
// a human string)"; spec §4.2.9). Results are cached without eviction —
// the analyzer is a single short-lived run.
type SymbolResolver struct {
	resolverPath string
	corePath     string
	exePath      string
	timeout      time.Duration

	cache maps.ConcurrentMap[uint64, string]
}

// NewSymbolResolver constructs a resolver. Exactly one of corePath or
// exePath should be set, matching the resolver's `--core`/`-e` contract.
func NewSymbolResolver(resolverPath, corePath, exePath string, timeout time.Duration) *SymbolResolver {
	return &SymbolResolver{
		resolverPath: resolverPath,
		corePath:     corePath,
		exePath:      exePath,
		timeout:      timeout,
		cache:        maps.NewConcurrentMap[uint64, string](),
	}
}

// Resolve returns the symbol string for addr, consulting and populating
// the cache. An address of 0 (the null-sentinel terminator) resolves to
// "(nil)" without invoking the subprocess.
func (r *SymbolResolver) Resolve(addr uint64) string {
	if addr == 0 {
		return "(nil)"
	}
	if s, ok := r.cache.Load(addr); ok {
		return s
	}

	s := r.resolve(addr)
	r.cache.Store(addr, s)
	return s
}

func (r *SymbolResolver) resolve(addr uint64) string {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	args := make([]string, 0, 4)
	if r.corePath != "" {
		args = append(args, "--core", r.corePath)
	} else if r.exePath != "" {
		args = append(args, "-e", r.exePath)
	}
	args = append(args, fmt.Sprintf("0x%x", addr))

	cmd := exec.CommandContext(ctx, r.resolverPath, args...)
	out, err := cmd.Output()
	if err != nil {
		return unresolvedHex(addr)
	}

	line := firstLine(string(out))
	if line == "??:0" || line == "" {
		return unresolvedHex(addr)
	}
	return line
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func unresolvedHex(addr uint64) string {
	return fmt.Sprintf("0x%x", addr)
}
