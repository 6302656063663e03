package filter

import (
	"fmt"
	"strings"
	"sync"

	"github.com/grafana/regexp"

	"m3u-parser/work/logger"
	"m3u-parser/work/types"
)

// FilterManager caches compiled alternation patterns so repeated filters over
// the same fragments compile once.
type FilterManager struct {
	filters map[string]*regexp.Regexp
	mu      sync.RWMutex
}

// NewFilterManager creates a new filter manager
func NewFilterManager() *FilterManager {
	return &FilterManager{
		filters: make(map[string]*regexp.Regexp),
	}
}

// Pattern joins the fragments into a single case-insensitive alternation.
// Fragments are used as regular expressions, not literals.
func Pattern(fragments []string) string {
	return "(?i)(?:" + strings.Join(fragments, "|") + ")"
}

// GetOrCreateFilter returns the compiled alternation for fragments, compiling
// and caching it on first use. An uncompilable fragment yields an error
// wrapping types.ErrInvalidPattern.
func (fm *FilterManager) GetOrCreateFilter(fragments []string) (*regexp.Regexp, error) {
	key := Pattern(fragments)

	fm.mu.RLock()
	re, exists := fm.filters[key]
	fm.mu.RUnlock()
	if exists {
		return re, nil
	}

	compiled, err := regexp.Compile(key)
	if err != nil {
		logger.Error("{filter - GetOrCreateFilter} failed to compile '%s': %v", key, err)
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidPattern, err)
	}

	fm.mu.Lock()
	defer fm.mu.Unlock()
	if re, exists := fm.filters[key]; exists {
		return re, nil
	}
	fm.filters[key] = compiled
	logger.Debug("{filter - GetOrCreateFilter} compiled '%s'", key)
	return compiled, nil
}

// ClearFilters clears all compiled filters
func (fm *FilterManager) ClearFilters() {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.filters = make(map[string]*regexp.Regexp)
}

// Len returns the number of cached patterns.
func (fm *FilterManager) Len() int {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	return len(fm.filters)
}

// FilterRecords keeps the records whose field value matches re when retrieve
// is true, or those that do not match when retrieve is false. Absent values
// are tested as the empty string. Order is preserved; records are not copied.
func FilterRecords(records []types.StreamRecord, field types.Field, re *regexp.Regexp, retrieve bool) []types.StreamRecord {
	filtered := make([]types.StreamRecord, 0, len(records))

	for i := range records {
		value, _ := field.Value(&records[i])
		if re.MatchString(value) == retrieve {
			filtered = append(filtered, records[i])
		}
	}

	logger.Debug("{filter - FilterRecords} %s retrieve=%v: %d -> %d records", field, retrieve, len(records), len(filtered))
	return filtered
}
