package cli

import "context"

type access int

const (
	public access = iota
	member
	admin
)

type command struct {
	name    string
	usage   string
	help    string
	access  access
	minArgs int
	run     func(ctx context.Context, args []string) error
}

func (a *App) commandTable() []command {
	return []command{
		{name: "login", usage: "login [username]", help: "start a session", access: public, run: a.login},
		{name: "logout", usage: "logout", help: "end the session", access: member, run: a.logout},
		{name: "whoami", usage: "whoami", help: "show the logged-in user", access: member, run: a.whoami},
		{name: "stats", usage: "stats", help: "inventory dashboard", access: member, run: a.stats},
		{name: "categories", usage: "categories", help: "list categories and locations", access: member, run: a.categories},

		{name: "items", usage: "items [search]", help: "list items", access: member, run: a.listItems},
		{name: "item", usage: "item <id|code>", help: "show one item", access: member, minArgs: 1, run: a.showItem},
		{name: "additem", usage: "additem", help: "add an item", access: admin, run: a.addItem},
		{name: "edititem", usage: "edititem <id|code>", help: "edit an item", access: admin, minArgs: 1, run: a.editItem},
		{name: "delitem", usage: "delitem <id|code>", help: "delete an item with its loans and requests", access: admin, minArgs: 1, run: a.deleteItem},
		{name: "nextcode", usage: "nextcode <prefix>", help: "reserve the next item code", access: admin, minArgs: 1, run: a.nextCode},

		{name: "users", usage: "users", help: "list users", access: admin, run: a.listUsers},
		{name: "adduser", usage: "adduser", help: "add a user", access: admin, run: a.addUser},
		{name: "edituser", usage: "edituser <id|username>", help: "edit a user", access: admin, minArgs: 1, run: a.editUser},
		{name: "deluser", usage: "deluser <id|username>", help: "delete a user", access: admin, minArgs: 1, run: a.deleteUser},

		{name: "request", usage: "request <item> <qty> [note]", help: "ask to borrow an item", access: member, minArgs: 2, run: a.createRequest},
		{name: "showrequest", usage: "showrequest <request>", help: "show one request", access: member, minArgs: 1, run: a.showRequest},
		{name: "requests", usage: "requests [pending|approved|declined|all]", help: "list requests", access: member, run: a.listRequests},
		{name: "approve", usage: "approve <request> [due YYYY-MM-DD]", help: "approve a request and lend the units", access: admin, minArgs: 1, run: a.approve},
		{name: "decline", usage: "decline <request>", help: "decline a request", access: admin, minArgs: 1, run: a.decline},

		{name: "checkout", usage: "checkout <item> <user> <qty> [due]", help: "lend units directly", access: admin, minArgs: 3, run: a.checkOut},
		{name: "checkin", usage: "checkin <loan>", help: "return a loan", access: admin, minArgs: 1, run: a.checkIn},
		{name: "loans", usage: "loans [active|overdue|all]", help: "list loans", access: member, run: a.listLoans},
		{name: "loan", usage: "loan <loan>", help: "show one loan", access: member, minArgs: 1, run: a.showLoan},

		{name: "audits", usage: "audits [count]", help: "show the audit trail", access: admin, run: a.listAudits},
		{name: "backup", usage: "backup", help: "upload a snapshot to object storage", access: admin, run: a.backup},
		{name: "restore", usage: "restore [key]", help: "list backups, or restore one", access: admin, run: a.restore},
	}
}
