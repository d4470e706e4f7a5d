/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: target.go
Description: Demo target for the learner. A small vault protocol spoken over
stdin/stdout one command per line: login, logout, open, close and read. Learn
it with

	akaylee-learner learn --target demo/vault.yaml --output vault.dot
*/

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

type vault struct {
	loggedIn bool
	open     bool
	reads    int
}

func (v *vault) handle(cmd string) string {
	switch cmd {
	case "login":
		if v.loggedIn {
			return "already"
		}
		v.loggedIn = true
		return "welcome"
	case "logout":
		if !v.loggedIn {
			return "denied"
		}
		*v = vault{}
		return "bye"
	case "open":
		if !v.loggedIn {
			return "denied"
		}
		if v.open {
			return "already"
		}
		v.open = true
		return "opened"
	case "close":
		if !v.open {
			return "noop"
		}
		v.open = false
		return "closed"
	case "read":
		if !v.open {
			return "denied"
		}
		// two secrets per login
		if v.reads == 2 {
			return "empty"
		}
		v.reads++
		return "secret"
	default:
		return "unknown"
	}
}

func main() {
	v := &vault{}
	in := bufio.NewScanner(os.Stdin)
	out := bufio.NewWriter(os.Stdout)
	for in.Scan() {
		fmt.Fprintln(out, v.handle(strings.TrimSpace(in.Text())))
		out.Flush()
	}
}
