package console

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

// entry is one row of a menu or section list. Entries with a non-zero
// objectID open that object's history when selected.
type entry struct {
	title    string
	desc     string
	objectID int64
}

func (e entry) Title() string       { return e.title }
func (e entry) Description() string { return e.desc }
func (e entry) FilterValue() string { return e.title }

type entryDelegate struct{}

func (d entryDelegate) Height() int                             { return 2 }
func (d entryDelegate) Spacing() int                            { return 0 }
func (d entryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d entryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	e, ok := item.(entry)
	if !ok {
		return
	}

	title := itemStyle.Render("  " + e.title)
	if index == m.Index() {
		title = selectedItemStyle.Render("▸ " + e.title)
	}
	fmt.Fprintf(w, "%s\n%s", title, descriptionStyle.Render(e.desc))
}

// section is a browsable view backed by a store query.
type section struct {
	name string
	desc string
	load func(ctx context.Context, db *sql.DB) ([]list.Item, error)
}

var sections = []section{
	{"Objects", "Active objects with their zone and status", loadObjects},
	{"Zones", "Active zones", loadZones},
	{"Categories", "Object categories", loadCategories},
	{"Statuses", "Object statuses", loadStatuses},
	{"Inventory", "Quantity and value per zone", loadInventory},
	{"History", "Changes grouped by zone and action", loadSummary},
}

func loadObjects(ctx context.Context, db *sql.DB) ([]list.Item, error) {
	objects, err := store.ListObjects(ctx, db, model.ObjectFilter{})
	if err != nil {
		return nil, err
	}
	items := make([]list.Item, 0, len(objects))
	for _, o := range objects {
		items = append(items, entry{
			title:    fmt.Sprintf("#%d %s", o.ID, o.Name),
			desc:     fmt.Sprintf("%d × %s · %s · %s · %s", o.Quantity, o.Price.StringFixed(2), o.CategoryName, o.ZoneName, o.StatusName),
			objectID: o.ID,
		})
	}
	return items, nil
}

func loadZones(ctx context.Context, db *sql.DB) ([]list.Item, error) {
	zones, err := store.ListZones(ctx, db)
	if err != nil {
		return nil, err
	}
	items := make([]list.Item, 0, len(zones))
	for _, z := range zones {
		items = append(items, entry{title: fmt.Sprintf("#%d %s", z.ID, z.Name), desc: z.Description})
	}
	return items, nil
}

func loadCategories(ctx context.Context, db *sql.DB) ([]list.Item, error) {
	categories, err := store.ListCategories(ctx, db)
	if err != nil {
		return nil, err
	}
	items := make([]list.Item, 0, len(categories))
	for _, c := range categories {
		items = append(items, entry{title: fmt.Sprintf("#%d %s", c.ID, c.Name), desc: c.Description})
	}
	return items, nil
}

func loadStatuses(ctx context.Context, db *sql.DB) ([]list.Item, error) {
	statuses, err := store.ListStatuses(ctx, db)
	if err != nil {
		return nil, err
	}
	items := make([]list.Item, 0, len(statuses))
	for _, s := range statuses {
		items = append(items, entry{title: fmt.Sprintf("#%d %s", s.ID, s.Name), desc: s.Description})
	}
	return items, nil
}

func loadInventory(ctx context.Context, db *sql.DB) ([]list.Item, error) {
	zones, err := store.ListInventory(ctx, db)
	if err != nil {
		return nil, err
	}
	items := make([]list.Item, 0, len(zones))
	for _, z := range zones {
		items = append(items, entry{
			title: z.ZoneName,
			desc:  fmt.Sprintf("%d objects · %d pieces · value %s", z.Objects, z.TotalQuantity, z.TotalValue.StringFixed(2)),
		})
	}
	return items, nil
}

func loadSummary(ctx context.Context, db *sql.DB) ([]list.Item, error) {
	summary, err := store.SummarizeHistory(ctx, db)
	if err != nil {
		return nil, err
	}
	items := make([]list.Item, 0, len(summary))
	for _, s := range summary {
		zone := s.ZoneName
		if zone == "" {
			zone = "(no zone)"
		}
		items = append(items, entry{
			title: fmt.Sprintf("%s · %s", zone, s.ActionType),
			desc:  fmt.Sprintf("%d changes, last %s: %s", s.Count, s.LastChange.Format(store.TimeLayout), strings.Join(s.Objects, ", ")),
		})
	}
	return items, nil
}

// objectHistory renders the full history of one object.
func objectHistory(ctx context.Context, db *sql.DB, id int64) (string, error) {
	obj, err := store.GetObject(ctx, db, id)
	if err != nil {
		return "", err
	}
	entries, err := store.QueryHistory(ctx, db, model.HistoryFilter{ObjectID: id})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(obj.Name))
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %-7s %s", e.ModifiedAt.Format(store.TimeLayout), e.ActionType, e.ModificationUser)
		if e.FieldModified != "" {
			fmt.Fprintf(&b, "  %s: %s → %s", e.FieldModified, value(e.OldValue), value(e.NewValue))
		}
		if e.Comment != "" {
			fmt.Fprintf(&b, "  (%s)", e.Comment)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func value(s *string) string {
	if s == nil {
		return "∅"
	}
	return *s
}
