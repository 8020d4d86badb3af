package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/EventStore/EventStore-Client-Go/v4/esdb"
	"github.com/google/uuid"

	"github.com/hcid-network/platform/internal/shared/errors"
	"github.com/hcid-network/platform/internal/shared/types"
)

const (
	// auditStream is the single stream holding the whole chain
	auditStream = "hcid-audit"
	// auditEventType marks audit entries in the stream
	auditEventType = "AuditEntry"

	// readBatchLimit bounds full-stream scans
	readBatchLimit = 10000
)

// EventStoreRepository stores the audit chain in EventStoreDB, which is
// append-only by construction: entries cannot be modified or deleted once
// written.
type EventStoreRepository struct {
	client   *esdb.Client
	mu       sync.Mutex
	lastHash string
	sequence int64
}

// NewEventStoreRepository creates an EventStoreDB-backed audit repository
func NewEventStoreRepository(client *esdb.Client) *EventStoreRepository {
	return &EventStoreRepository{client: client}
}

// Initialize loads the chain head from the last stream event
func (r *EventStoreRepository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stream, err := r.client.ReadStream(ctx, auditStream, esdb.ReadStreamOptions{
		Direction: esdb.Backwards,
		From:      esdb.End{},
	}, 1)
	if err != nil {
		// A missing stream just means no entries yet
		if esdbErr, ok := esdb.FromError(err); ok {
			if esdbErr.Code() == esdb.ErrorCodeResourceNotFound {
				r.lastHash = ""
				r.sequence = 0
				return nil
			}
		}
		return errors.Wrap(err, "failed to read audit stream")
	}
	defer stream.Close()

	event, err := stream.Recv()
	if err != nil {
		r.lastHash = ""
		r.sequence = 0
		return nil
	}

	if event.Event != nil && event.Event.EventType == auditEventType {
		var entry AuditEntry
		if err := json.Unmarshal(event.Event.Data, &entry); err == nil {
			r.lastHash = entry.Hash
			r.sequence = entry.Sequence
		}
	}
	return nil
}

// Append links the entry to the chain head and writes it to the stream
func (r *EventStoreRepository) Append(ctx context.Context, entry *AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sequence++
	entry.Sequence = r.sequence
	entry.PrevHash = r.lastHash
	entry.Hash = entry.ComputeHash()

	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "failed to marshal audit entry")
	}

	eventData := esdb.EventData{
		EventID:     uuid.New(),
		EventType:   auditEventType,
		ContentType: esdb.ContentTypeJson,
		Data:        data,
		Metadata:    []byte(fmt.Sprintf(`{"sequence":%d,"hash":"%s"}`, entry.Sequence, entry.Hash)),
	}

	_, err = r.client.AppendToStream(ctx, auditStream, esdb.AppendToStreamOptions{}, eventData)
	if err != nil {
		r.sequence--
		return errors.Wrap(err, "failed to append audit entry")
	}

	r.lastHash = entry.Hash
	return nil
}

// FindByID scans the stream for an entry. Audit lookups by ID are rare
// admin operations; a projection would be needed at larger volumes.
func (r *EventStoreRepository) FindByID(ctx context.Context, id types.ID) (*AuditEntry, error) {
	var found *AuditEntry
	err := r.scan(ctx, func(entry *AuditEntry) bool {
		if entry.ID == id {
			found = entry
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.NotFound("audit entry", id.String())
	}
	return found, nil
}

// List reads the stream and filters in memory
func (r *EventStoreRepository) List(ctx context.Context, filter ListEntriesFilter) ([]*AuditEntry, int, error) {
	var matched []*AuditEntry
	err := r.scan(ctx, func(entry *AuditEntry) bool {
		if matches(entry, filter) {
			matched = append(matched, entry)
		}
		return true
	})
	if err != nil {
		return nil, 0, err
	}

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	end := filter.Offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], total, nil
}

// GetByResource returns entries touching one resource
func (r *EventStoreRepository) GetByResource(ctx context.Context, resourceType string, resourceID types.ID, limit int) ([]*AuditEntry, error) {
	entries, _, err := r.List(ctx, ListEntriesFilter{
		ResourceType: resourceType,
		ResourceID:   &resourceID,
		Limit:        limit,
	})
	return entries, err
}

// VerifyChain re-reads the stream and checks every hash link
func (r *EventStoreRepository) VerifyChain(ctx context.Context, limit int) (*VerifyResult, error) {
	var entries []*AuditEntry
	err := r.scan(ctx, func(entry *AuditEntry) bool {
		entries = append(entries, entry)
		return limit <= 0 || len(entries) < limit
	})
	if err != nil {
		return nil, err
	}
	return verifyEntries(entries, limit), nil
}

// GetLastHash returns the chain head hash
func (r *EventStoreRepository) GetLastHash() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastHash
}

// GetSequence returns the current sequence number
func (r *EventStoreRepository) GetSequence() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sequence
}

// Count returns the total number of entries
func (r *EventStoreRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.scan(ctx, func(*AuditEntry) bool {
		count++
		return true
	})
	return count, err
}

// scan walks the audit stream forwards, invoking fn for every entry until
// it returns false or the stream ends.
func (r *EventStoreRepository) scan(ctx context.Context, fn func(*AuditEntry) bool) error {
	stream, err := r.client.ReadStream(ctx, auditStream, esdb.ReadStreamOptions{
		Direction: esdb.Forwards,
		From:      esdb.Start{},
	}, readBatchLimit)
	if err != nil {
		if esdbErr, ok := esdb.FromError(err); ok {
			if esdbErr.Code() == esdb.ErrorCodeResourceNotFound {
				return nil
			}
		}
		return errors.Wrap(err, "failed to read audit stream")
	}
	defer stream.Close()

	for {
		event, err := stream.Recv()
		if err != nil {
			return nil
		}
		if event.Event == nil || event.Event.EventType != auditEventType {
			continue
		}

		var entry AuditEntry
		if err := json.Unmarshal(event.Event.Data, &entry); err != nil {
			continue
		}
		if !fn(&entry) {
			return nil
		}
	}
}
