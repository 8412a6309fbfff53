package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/fireflow/internal/client/models"
)

func currentMark(current bool) string {
	if current {
		return "*"
	}
	return ""
}

func authLabel(a models.Authentication) string {
	switch a.(type) {
	case models.OAuth:
		return "oauth"
	case models.PAT:
		return "pat"
	}
	return "-"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printAccounts(w io.Writer, accounts []models.Account) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tSERVER\tEMAIL\tAUTH\tSTATE")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			currentMark(a.IsCurrent), a.ID, orDash(a.ServerAddress), orDash(a.Email), authLabel(a.Auth), orDash(a.State))
	}
	return tw.Flush()
}

func printUsers(w io.Writer, users []models.User) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tUSER\tSERVER\tIDENTIFIER\tAUTH\tSTATE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			currentMark(u.IsCurrent), u.ID, orDash(u.Identification()), orDash(u.ServerAddress),
			orDash(u.Identifier), authLabel(u.Auth), orDash(u.State))
	}
	return tw.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
