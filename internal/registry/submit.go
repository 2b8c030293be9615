package registry

import (
	"context"

	"github.com/Makepad-fr/tada/internal/model"
)

// Submission is one create-or-append request.
// An empty ListID asks for a new list; otherwise the item goes to that list.
type Submission struct {
	ListID   model.ListID
	Text     string
	Priority string
}

// Receipt reports where a submission landed.
type Receipt struct {
	List    model.List
	Created bool
}

// Submit dispatches s explicitly: no id starts a new list, an id appends
// to that existing list. An unknown id is a *model.NotFoundError and never
// creates a list. Resubmitting the same text appends another item.
func (r *Registry) Submit(ctx context.Context, s Submission) (Receipt, error) {
	if s.ListID == "" {
		l, err := r.StartList(ctx, s.Text, s.Priority)
		if err != nil {
			return Receipt{}, err
		}
		return Receipt{List: l, Created: true}, nil
	}
	l, err := r.AddItem(ctx, s.ListID, s.Text, s.Priority)
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{List: l}, nil
}
