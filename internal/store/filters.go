package store

import (
	"tasker/internal/persist"
	"tasker/internal/task"
)

// Filters returns the current filter configuration.
func (s *Store) Filters() task.FilterOptions {
	return s.filters.Get()
}

// SetFilters replaces the whole filter configuration after validating it.
// Empty status and sort fields take their defaults.
func (s *Store) SetFilters(opts task.FilterOptions) error {
	def := task.DefaultFilters()
	status, err := task.ParseStatusFilter(opts.Status)
	if err != nil {
		return err
	}
	opts.Status = status
	if opts.SortBy == "" {
		opts.SortBy = def.SortBy
	} else if opts.SortBy, err = task.ParseSortOption(string(opts.SortBy)); err != nil {
		return err
	}
	s.filters.Set(opts)
	return nil
}

// SetSearch sets the search term.
func (s *Store) SetSearch(search string) {
	s.filters.Update(func(cur task.FilterOptions) task.FilterOptions {
		cur.Search = search
		return cur
	})
}

// SetStatus sets the status filter: a status name or "all".
func (s *Store) SetStatus(status string) error {
	st, err := task.ParseStatusFilter(status)
	if err != nil {
		return err
	}
	s.filters.Update(func(cur task.FilterOptions) task.FilterOptions {
		cur.Status = st
		return cur
	})
	return nil
}

// SetSortBy sets the sort option.
func (s *Store) SetSortBy(by task.SortOption) error {
	by, err := task.ParseSortOption(string(by))
	if err != nil {
		return err
	}
	s.filters.Update(func(cur task.FilterOptions) task.FilterOptions {
		cur.SortBy = by
		return cur
	})
	return nil
}

// SetDateRange sets the creation date range.
func (s *Store) SetDateRange(r task.DateRange) {
	s.filters.Update(func(cur task.FilterOptions) task.FilterOptions {
		cur.DateRange = r
		return cur
	})
}

// ClearFilters restores the default filters.
func (s *Store) ClearFilters() {
	s.filters.Set(task.DefaultFilters())
}

// ClearSearch resets the search term.
func (s *Store) ClearSearch() {
	s.SetSearch("")
}

// Preferences returns the UI preferences.
func (s *Store) Preferences() persist.Preferences {
	return s.prefs.Get()
}

// DarkMode reports whether dark mode is on.
func (s *Store) DarkMode() bool {
	return s.prefs.Get().DarkMode
}

// SetDarkMode turns dark mode on or off.
func (s *Store) SetDarkMode(on bool) {
	s.prefs.Update(func(p persist.Preferences) persist.Preferences {
		p.DarkMode = on
		return p
	})
}

// ToggleDarkMode flips dark mode and returns the new setting.
func (s *Store) ToggleDarkMode() bool {
	var on bool
	s.prefs.Update(func(p persist.Preferences) persist.Preferences {
		p.DarkMode = !p.DarkMode
		on = p.DarkMode
		return p
	})
	return on
}
