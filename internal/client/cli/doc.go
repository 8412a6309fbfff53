// Package cli is the fireflow command-line client.
//
// The root command is the composition root: its PersistentPreRunE loads the
// configuration, opens the database, builds the preference tiers and the
// account and user services, and every subcommand works through the
// use cases built over them. The "shell" command keeps that state open and
// runs the same subcommands line by line.
//
// Commands:
//
//	prefs    get | has | set | rm | clear | watch | status
//	accounts list | current | add | update | state | prune
//	users    list | current | local | login | complete | switch | update |
//	         token | logout | delete | prune | watch
//	shell    interactive loop
//	version  build information
package cli
