package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"timecard/storage"
)

var (
	userEditUsername string
	userEditRole     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	Long: `Create, list, edit, and delete user accounts.

User management is an administrative action and requires a manager identity,
with one exception: when the store holds no users yet, "user add" runs without
an acting identity so the first manager can be bootstrapped.`,
	Example: `
  # Bootstrap the first manager (empty store only)
  timecard user add frank manager

  # Day-to-day administration
  timecard --as frank --role manager user add alice user
  timecard --as frank --role manager user list
  timecard --as frank --role manager user edit 2 --username alice --user-role manager
  timecard --as frank --role manager user rm 2
`,
}

var userAddCmd = &cobra.Command{
	Use:   "add <username> <role>",
	Short: "Create a user with role user or manager",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		role, err := parseRoleArg(args[1])
		if err != nil {
			return err
		}

		if err := requireManagerOrBootstrap(store); err != nil {
			return err
		}

		user, err := store.CreateUser(args[0], role)
		if err != nil {
			return err
		}
		fmt.Printf("Created user %d: %s (%s)\n", user.ID, user.Username, user.Role)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		users, err := store.ListUsers()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tROLE")
		for _, user := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\n", user.ID, user.Username, user.Role)
		}
		return w.Flush()
	},
}

var userEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a user's username and role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		role, err := parseRoleArg(userEditRole)
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := requireManager(store); err != nil {
			return err
		}

		if err := store.UpdateUser(id, userEditUsername, role); err != nil {
			return err
		}
		fmt.Printf("Updated user %d\n", id)
		return nil
	},
}

var userRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a user",
	Long: `Delete a user by id.

Timesheet entries owned by the user are NOT deleted; they stay behind as
orphaned rows, matching the permissive delete behavior of the schema.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := requireManager(store); err != nil {
			return err
		}

		count, err := store.CountEntriesForUser(id)
		if err != nil {
			return err
		}
		if count > 0 {
			fmt.Fprintf(os.Stderr, "Warning: %d timesheet entries reference user %d and will be orphaned\n", count, id)
		}

		deleted, err := store.DeleteUser(id)
		if err != nil {
			return err
		}
		if !deleted {
			return storage.ErrNotFound
		}
		fmt.Printf("Deleted user %d\n", id)
		return nil
	},
}

func requireManager(store *storage.SQLiteStore) error {
	actor, err := resolveActor(store)
	if err != nil {
		return err
	}
	if !actor.IsManager() {
		return fmt.Errorf("managing users and project codes requires the manager role")
	}
	return nil
}

// requireManagerOrBootstrap allows the very first user to be created
// without an acting identity, since no manager exists yet to authorize
// it.
func requireManagerOrBootstrap(store *storage.SQLiteStore) error {
	users, err := store.ListUsers()
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}
	return requireManager(store)
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userEditCmd)
	userCmd.AddCommand(userRmCmd)

	userEditCmd.Flags().StringVar(&userEditUsername, "username", "", "New username")
	userEditCmd.Flags().StringVar(&userEditRole, "user-role", "", "New role: user|manager")
	_ = userEditCmd.MarkFlagRequired("username")
	_ = userEditCmd.MarkFlagRequired("user-role")
}
