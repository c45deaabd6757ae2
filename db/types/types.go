package types

// Migration is a schema change kept as a single SQL text holding both
// directions, separated by the "-- +migrate Up" marker (down first)
type Migration struct {
	ID  string
	SQL string
	// Prefix is prepended to the table names marked with /*dbprefix*/ so that
	// several components can share one database file
	Prefix string
}
