package storage

import (
	"strconv"
	"strings"

	"github.com/wagnerlima/context-portal/portal-mcp/internal/models"
)

// LinkQuery narrows GetLinksForItem. ItemType and ItemID identify the
// item; the lookup matches it as source or target. Limit <= 0 means no
// cap.
type LinkQuery struct {
	ItemType         string
	ItemID           string
	RelationshipType string
	LinkedItemType   string
	Limit            int
}

// LinkUpdate carries a partial update to a link's mutable fields. Nil
// fields are left untouched.
type LinkUpdate struct {
	ID               int64
	RelationshipType *string
	Description      *string
}

// LogLink records a directed relationship between two items. Item IDs are
// stored exactly as supplied, as text.
func (w *WorkspaceStore) LogLink(l models.ContextLink) (models.ContextLink, error) {
	switch {
	case l.SourceItemType == "" || l.SourceItemID == "":
		return l, validationErr("source item type and id are required")
	case l.TargetItemType == "" || l.TargetItemID == "":
		return l, validationErr("target item type and id are required")
	case l.RelationshipType == "":
		return l, validationErr("relationship_type is required")
	}

	err := w.db.QueryRow(
		`INSERT INTO context_links
		     (source_item_type, source_item_id, target_item_type, target_item_id, relationship_type, description)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id, timestamp`,
		l.SourceItemType, l.SourceItemID, l.TargetItemType, l.TargetItemID, l.RelationshipType, l.Description,
	).Scan(&l.ID, &l.Timestamp)
	if err != nil {
		return l, opErr("log context link", err)
	}
	return l, nil
}

// GetLinksForItem retrieves links where the item appears as source or
// target: storage is directed, lookup is not. A custom_data item is
// matched under both its surrogate ID and its category:key form, whichever
// the caller queries by, so links recorded under either addressing
// convention are found.
func (w *WorkspaceStore) GetLinksForItem(q LinkQuery) ([]models.ContextLink, error) {
	if q.ItemType == "" || q.ItemID == "" {
		return nil, validationErr("item type and id are required")
	}

	itemIDs := append([]string{q.ItemID}, w.customDataIDAliases(q.ItemType, q.ItemID)...)

	var idConds []string
	var args []any
	for _, id := range itemIDs {
		idConds = append(idConds,
			"(source_item_type = ? AND source_item_id = ?)",
			"(target_item_type = ? AND target_item_id = ?)")
		args = append(args, q.ItemType, id, q.ItemType, id)
	}
	conds := []string{"(" + strings.Join(idConds, " OR ") + ")"}

	if q.RelationshipType != "" {
		conds = append(conds, "relationship_type = ?")
		args = append(args, q.RelationshipType)
	}
	if q.LinkedItemType != "" {
		// Filter on the other end of the link, whichever direction the
		// queried item sits on.
		conds = append(conds,
			"((source_item_type = ? AND target_item_type = ?) OR (target_item_type = ? AND source_item_type = ?))")
		args = append(args, q.ItemType, q.LinkedItemType, q.ItemType, q.LinkedItemType)
	}

	query := `SELECT id, timestamp, source_item_type, source_item_id,
		        target_item_type, target_item_id, relationship_type, description
		 FROM context_links WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY timestamp DESC, id DESC`
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, opErr("get context links", err)
	}
	defer rows.Close()

	var links []models.ContextLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// UpdateLink updates a link's relationship type and/or description.
// Returns false when the ID does not exist.
func (w *WorkspaceStore) UpdateLink(u LinkUpdate) (bool, error) {
	var sets []string
	var args []any
	if u.RelationshipType != nil {
		sets = append(sets, "relationship_type = ?")
		args = append(args, *u.RelationshipType)
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if len(sets) == 0 {
		return false, validationErr("at least one of relationship_type or description must be provided")
	}

	args = append(args, u.ID)
	result, err := w.db.Exec(
		`UPDATE context_links SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return false, opErr("update context link", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// DeleteLink removes a link by ID. Returns false when the ID does not
// exist.
func (w *WorkspaceStore) DeleteLink(id int64) (bool, error) {
	result, err := w.db.Exec(`DELETE FROM context_links WHERE id = ?`, id)
	if err != nil {
		return false, opErr("delete context link", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// customDataIDAliases maps between the stored addressing forms of a
// custom_data item: the numeric surrogate ID and "category:key". Links
// may have been recorded under either form, so a lookup by one must also
// match the other. Non-custom_data types and unresolvable IDs yield no
// aliases.
func (w *WorkspaceStore) customDataIDAliases(itemType, itemID string) []string {
	if itemType != models.ItemTypeCustomData {
		return nil
	}

	if id, err := strconv.ParseInt(itemID, 10, 64); err == nil {
		if cd, err := w.GetCustomDataByID(id); err == nil {
			return []string{cd.Category + ":" + cd.Key}
		}
		return nil
	}

	for _, sep := range []string{"::", ":", "/"} {
		category, key, found := strings.Cut(itemID, sep)
		if !found || category == "" || key == "" {
			continue
		}
		items, err := w.GetCustomData(category, key)
		if err != nil || len(items) == 0 {
			continue
		}
		aliases := []string{strconv.FormatInt(items[0].ID, 10)}
		if canonical := category + ":" + key; canonical != itemID {
			aliases = append(aliases, canonical)
		}
		return aliases
	}
	return nil
}

func scanLink(row rowScanner) (models.ContextLink, error) {
	var l models.ContextLink
	err := row.Scan(&l.ID, &l.Timestamp, &l.SourceItemType, &l.SourceItemID,
		&l.TargetItemType, &l.TargetItemID, &l.RelationshipType, &l.Description)
	if err != nil {
		return l, opErr("scan context link", err)
	}
	return l, nil
}
