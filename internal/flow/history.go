package flow

import "github.com/sakif/symvora/internal/model"

// History returns the log filtered by query, newest first.
func (c *Controller) History(query string) []model.SymptomHistoryEntry {
	return c.history.Search(query)
}

// ClearHistory removes all entries. Sample data is not re-added afterwards.
func (c *Controller) ClearHistory() error {
	err := c.do(c.history.Clear)
	if err == nil {
		c.notify(NoticeInfo, "History cleared")
	}
	return err
}

// ResetHistory removes all entries and allows the sample data to be
// inserted again on the next History visit.
func (c *Controller) ResetHistory() error {
	return c.do(c.history.ResetToInitialState)
}
