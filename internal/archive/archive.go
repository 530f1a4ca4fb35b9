// Package archive stores encrypted snapshots of the club's records so
// audits can run against historic data and deleted records can be
// recovered.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ColinRobbins/scm-helper/internal/core"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

// DateFormat is how snapshot dates are named when loading one back.
const DateFormat = "2006-01-02"

// Snapshot is one complete copy of the upstream data, keyed by resource.
type Snapshot struct {
	ID          string
	Taken       time.Time
	Collections map[string][]domain.Record
}

// Info describes a stored snapshot without its payload.
type Info struct {
	ID    string
	Taken time.Time
}

// Store persists snapshots. Payloads are sealed with the vault the
// store was opened with; only metadata is stored in clear.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	// Load retrieves the latest snapshot taken on the given date, or
	// the latest overall when date is the zero time.
	Load(ctx context.Context, date time.Time) (Snapshot, error)
	List(ctx context.Context) ([]Info, error)
	Close() error
}

// Driver identifies a concrete snapshot store implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// Open selects a snapshot store using environment variables. Defaults
// to sqlite when unset.
//
//	SCM_ARCHIVE_DRIVER: memory|sqlite|postgres (default sqlite)
//	SCM_ARCHIVE_SQLITE_PATH: path to sqlite file (default ~/scm-helper/backups/archive.db)
//	SCM_ARCHIVE_POSTGRES_DSN: postgres DSN when driver=postgres
func Open(vault *Vault) (Store, error) {
	driver := os.Getenv("SCM_ARCHIVE_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		return NewSQLiteStore(os.Getenv("SCM_ARCHIVE_SQLITE_PATH"), vault)
	case DriverPostgres:
		return NewPostgresStore(os.Getenv("SCM_ARCHIVE_POSTGRES_DSN"), vault)
	default:
		return nil, fmt.Errorf("unknown archive driver %s", driver)
	}
}

// backupResource pairs a collection's display name with its resource.
type backupResource struct {
	Name     string
	Resource string
}

// backupResources lists everything a backup captures: the audited
// collections plus the record-keeping collections the audit itself
// never reads.
var backupResources = []backupResource{
	{"Sessions", core.ResourceSessions},
	{"Groups", core.ResourceGroups},
	{"Lists", core.ResourceLists},
	{"Roles", core.ResourceRoles},
	{"Conduct", core.ResourceConduct},
	{"Members", core.ResourceMembers},
	{"Incident Book", "IncidentBook"},
	{"Club Events", "ClubEvents"},
	{"Meets", "Meets"},
	{"Trial Requests", "TrialRequests"},
	{"Waiting List", "WaitingList"},
	{"Notice Board", "NoticeBoard"},
}

// Capture reads every backup collection through the transport and
// assembles a snapshot. The codes of conduct need a read per code to
// include the signature data.
func Capture(ctx context.Context, t core.Transport, notifier core.Notifier, now time.Time) (Snapshot, error) {
	snap := Snapshot{
		ID:          uuid.NewString(),
		Taken:       now,
		Collections: map[string][]domain.Record{},
	}

	for _, br := range backupResources {
		notifier.Notify(fmt.Sprintf("%s... ", br.Name))
		var recs []domain.Record
		var err error
		if br.Resource == core.ResourceConduct {
			recs, err = captureConduct(ctx, t)
		} else {
			recs, err = capturePages(ctx, t, br.Resource)
		}
		if err != nil {
			notifier.Notify("failed.\n")
			return Snapshot{}, fmt.Errorf("backup %s: %w", br.Name, err)
		}
		snap.Collections[br.Resource] = recs
		notifier.Notify(fmt.Sprintf("%d\n", len(recs)))
	}

	return snap, nil
}

func capturePages(ctx context.Context, t core.Transport, resource string) ([]domain.Record, error) {
	var out []domain.Record
	for page := 1; ; page++ {
		recs, err := t.Read(ctx, resource, page)
		if errors.Is(err, core.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			break
		}
		out = append(out, recs...)
	}
	return out, nil
}

func captureConduct(ctx context.Context, t core.Transport) ([]domain.Record, error) {
	index, err := t.Read(ctx, core.ResourceConduct, 1)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []domain.Record
	for _, rec := range index {
		full, err := t.Read(ctx, core.ResourceConduct+"/"+rec.Str(domain.KeyGUID), 1)
		if err != nil {
			return nil, err
		}
		out = append(out, full...)
	}
	return out, nil
}
