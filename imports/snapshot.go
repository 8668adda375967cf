package imports

import (
	"fmt"
	"sort"
	"time"
)

// StoreSnapshot is a point-in-time read of the natural keys the
// validators and the reconciler resolve against. Name comparison is
// exact and case-sensitive throughout.
//
// A snapshot taken at preview time is display-only; the commit executor
// re-reads before writing because other writers may have inserted rows
// between preview and confirm.
type StoreSnapshot struct {
	Categories map[string]int
	Equipment  map[string]int
	Workers    map[string]int
	Components map[string]int
	Products   map[string]int
	// Versions is keyed "product name|version name".
	Versions map[string]int
	// DefaultVersions maps product name to its default version id.
	DefaultVersions map[string]int
	// Steps is keyed by version id, then step code.
	Steps map[int]map[string]int
	// Certifications is keyed worker id, then equipment id.
	Certifications map[int]map[int]bool
	// ProductionKeys holds the persisted (worker, step, date, start)
	// natural keys, rendered by ProductionKey.
	ProductionKeys map[string]bool
	// OrderKeys holds the persisted (product id, due date) keys,
	// rendered by OrderKey.
	OrderKeys map[string]bool
}

func NewStoreSnapshot() *StoreSnapshot {
	return &StoreSnapshot{
		Categories:      map[string]int{},
		Equipment:       map[string]int{},
		Workers:         map[string]int{},
		Components:      map[string]int{},
		Products:        map[string]int{},
		Versions:        map[string]int{},
		DefaultVersions: map[string]int{},
		Steps:           map[int]map[string]int{},
		Certifications:  map[int]map[int]bool{},
		ProductionKeys:  map[string]bool{},
		OrderKeys:       map[string]bool{},
	}
}

func OrderKey(productId int, dueDate time.Time) string {
	return fmt.Sprintf("%d|%s", productId, dueDate.Format("2006-01-02"))
}

func VersionKey(productName, versionName string) string {
	return productName + "|" + versionName
}

func ProductionKey(workerId, stepId int, workDate time.Time, startMinutes int) string {
	return fmt.Sprintf("%d|%d|%s|%d", workerId, stepId, workDate.Format("2006-01-02"), startMinutes)
}

func (s *StoreSnapshot) HasCertification(workerId, equipmentId int) bool {
	return s.Certifications[workerId][equipmentId]
}

// Reconciliation classifies referenced names as create-or-reuse for one
// entity kind.
type Reconciliation struct {
	ToCreate []string `json:"toCreate"`
	Existing []string `json:"existing"`
}

// Classify splits distinct names into the ones the commit would mint
// and the ones it would reuse. Output is sorted for stable previews.
func Classify(names []string, known map[string]int) Reconciliation {
	seen := map[string]bool{}
	rec := Reconciliation{ToCreate: []string{}, Existing: []string{}}
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := known[name]; ok {
			rec.Existing = append(rec.Existing, name)
		} else {
			rec.ToCreate = append(rec.ToCreate, name)
		}
	}
	sort.Strings(rec.ToCreate)
	sort.Strings(rec.Existing)
	return rec
}
