package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Slot is one serial-to-entity assignment.
//
// Slots are handed out per class in first-seen order and never reused:
// once LHR-F1234567 becomes ctrl-1, it stays ctrl-1 for the life of the
// catalog, even across months of the controller sitting in a drawer.
type Slot struct {
	// Serial is the hardware serial number reported by the runtime.
	Serial string

	// Class is the entity id prefix, e.g. "ctrl" or "tracker".
	Class string

	// Slot is the 1-based position within the class.
	Slot int

	// EntityID is the published identifier, e.g. "ctrl-2".
	EntityID string

	FirstSeen time.Time
	LastSeen  time.Time
}

// Catalog persists the identities the bridge presents over MQTT: the
// per-device slot assignments and the instance UUID behind the Home
// Assistant device registry entry.
type Catalog struct {
	db *sql.DB
}

// New creates a catalog over an open database connection.
// The schema must already be migrated.
func New(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// InstanceID returns the stable identity of this bridge installation,
// generating and storing one on first call.
//
// The id ends up in every discovery payload's device block, so Home
// Assistant treats all entities from this catalog as one device. It must
// never change once handed out; a regenerated id would duplicate the
// device in Home Assistant's registry.
//
// Returns:
//   - string: UUID string, stable across restarts
//   - error: If the query or insert fails
func (c *Catalog) InstanceID(ctx context.Context) (string, error) {
	var id string
	err := c.db.QueryRowContext(ctx, "SELECT uuid FROM instance WHERE id = 1").Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("querying instance identity: %w", err)
	}

	// First run: mint and store.
	generated, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating instance identity: %w", err)
	}
	id = generated.String()

	if _, err := c.db.ExecContext(ctx,
		"INSERT INTO instance (id, uuid, created_at) VALUES (1, ?, ?)",
		id, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return "", fmt.Errorf("storing instance identity: %w", err)
	}

	return id, nil
}

// Assign returns the entity id for a serial, creating a new slot if the
// serial has never been seen.
//
// Existing assignments are returned unchanged with last_seen bumped. New
// serials take the next free slot in their class, so the second controller
// ever connected becomes ctrl-2 regardless of which USB port or pairing
// order it shows up with today.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - serial: Hardware serial number (must be non-empty)
//   - class: Entity id prefix such as "ctrl" (must be non-empty)
//
// Returns:
//   - string: Entity id, e.g. "ctrl-2"
//   - error: ErrInvalidSerial/ErrInvalidClass on bad input, or query failure
func (c *Catalog) Assign(ctx context.Context, serial, class string) (string, error) {
	if serial == "" {
		return "", ErrInvalidSerial
	}
	if class == "" {
		return "", ErrInvalidClass
	}

	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	var entityID string
	err = tx.QueryRowContext(ctx,
		"SELECT entity_id FROM device_slots WHERE serial = ?", serial,
	).Scan(&entityID)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx,
			"UPDATE device_slots SET last_seen = ? WHERE serial = ?", now, serial,
		); err != nil {
			return "", fmt.Errorf("touching slot: %w", err)
		}

	case errors.Is(err, sql.ErrNoRows):
		var maxSlot int
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(slot), 0) FROM device_slots WHERE class = ?", class,
		).Scan(&maxSlot); err != nil {
			return "", fmt.Errorf("finding next slot: %w", err)
		}

		slot := maxSlot + 1
		entityID = fmt.Sprintf("%s-%d", class, slot)

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO device_slots (serial, class, slot, entity_id, first_seen, last_seen)
			VALUES (?, ?, ?, ?, ?, ?)`,
			serial, class, slot, entityID, now, now,
		); err != nil {
			return "", fmt.Errorf("inserting slot: %w", err)
		}

	default:
		return "", fmt.Errorf("querying slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing slot assignment: %w", err)
	}

	return entityID, nil
}

// Lookup retrieves the slot assigned to a serial.
// Returns ErrSlotNotFound if the serial has never been assigned.
func (c *Catalog) Lookup(ctx context.Context, serial string) (*Slot, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT serial, class, slot, entity_id, first_seen, last_seen
		FROM device_slots
		WHERE serial = ?`, serial)

	slot, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("querying slot by serial: %w", err)
	}
	return slot, nil
}

// Slots lists every assignment, ordered by class then slot number.
func (c *Catalog) Slots(ctx context.Context) ([]Slot, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT serial, class, slot, entity_id, first_seen, last_seen
		FROM device_slots
		ORDER BY class, slot`)
	if err != nil {
		return nil, fmt.Errorf("querying slots: %w", err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning slot row: %w", err)
		}
		slots = append(slots, *slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slots: %w", err)
	}
	return slots, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanSlot.
type scanner interface {
	Scan(dest ...any) error
}

// scanSlot reads one device_slots row.
func scanSlot(row scanner) (*Slot, error) {
	var s Slot
	var firstSeen, lastSeen string

	if err := row.Scan(&s.Serial, &s.Class, &s.Slot, &s.EntityID, &firstSeen, &lastSeen); err != nil {
		return nil, err
	}

	// Timestamps are written by us in RFC3339; parse errors mean a
	// corrupted row and surface as zero times rather than failures.
	s.FirstSeen, _ = time.Parse(time.RFC3339, firstSeen) //nolint:errcheck // Format is controlled
	s.LastSeen, _ = time.Parse(time.RFC3339, lastSeen)   //nolint:errcheck // Format is controlled

	return &s, nil
}
