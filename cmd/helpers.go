package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"timecard/access"
	"timecard/config"
	"timecard/internal/timeutil"
	"timecard/storage"
	"timecard/timesheet"
)

// resolveDBPath prefers the --db flag over the configured database path.
func resolveDBPath(flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue, nil
	}

	cfg, err := config.LoadAndValidate()
	if err != nil {
		return "", err
	}
	return cfg.Database.Path, nil
}

func openStore() (*storage.SQLiteStore, error) {
	path, err := resolveDBPath(dbPath)
	if err != nil {
		return nil, err
	}
	return storage.Open(path)
}

// resolveActor turns the --as/--role flags into a stored identity.
func resolveActor(store *storage.SQLiteStore) (access.Identity, error) {
	name := strings.TrimSpace(actorName)
	role := timesheet.Role(strings.TrimSpace(actorRole))
	if name == "" || role == "" {
		return access.Identity{}, fmt.Errorf("acting identity required: pass --as <username> --role user|manager")
	}
	return access.Resolve(store, name, role)
}

func parseRoleArg(value string) (timesheet.Role, error) {
	role := timesheet.Role(strings.TrimSpace(strings.ToLower(value)))
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q (valid: user, manager)", value)
	}
	return role, nil
}

func printEntryTable(out io.Writer, entries []timesheet.EntryDetail) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSER\tPROJECT\tDATE\tHOURS\tSTATUS\tCOMMENT")
	for _, entry := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			entry.ID,
			entry.Username,
			entry.Code,
			timeutil.FormatDay(entry.Date),
			entry.Hours,
			entry.Status,
			entry.Comment,
		)
	}
	_ = w.Flush()
}
