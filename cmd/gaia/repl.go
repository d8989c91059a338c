package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/SpikedPunchVictim/gaia/dom"
	"github.com/SpikedPunchVictim/gaia/dom/domtest"
	"github.com/SpikedPunchVictim/gaia/pth"
	"github.com/SpikedPunchVictim/gaia/val"
)

const replHelp = `commands:
   ls [path]               list the children of a namespace
   tree [path]             print the subtree
   mkns <path>             create a namespace
   mkmod <path>            create a model
   mkinst <path> <model>   create an instance of a model
   mem <model> <name> <v>  add a member with an initial value
   set <path> <name> <v>   set a member or field value
   ren <path> <name>       rename an object
   mv <path> <dest>        move an object to another namespace
   rm <path>               delete an object
   vers                    print the version manifest
   exit                    quit
values are parsed as int, true/false or string.
`

func repl(args []string) error {
	// use the sample fixture with an in-process authority for now
	fix, err := domtest.New()
	if err != nil {
		return err
	}
	ctx := context.Background()
	lin := liner.NewLiner()
	defer lin.Close()
	lin.SetMultiLineMode(true)
	for {
		got, err := lin.Prompt("> ")
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return nil
			}
			log.Printf("unexpected error reading prompt: %v", err)
			continue
		}
		got = strings.TrimSpace(got)
		if got == "" {
			continue
		}
		lin.AppendHistory(got)
		if got == "exit" || got == "quit" {
			return nil
		}
		if err := replCmd(ctx, fix, strings.Fields(got)); err != nil {
			log.Printf("error: %v", err)
		}
	}
}

func replCmd(ctx context.Context, fix *domtest.Fixture, args []string) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "help":
		fmt.Print(replHelp)
		return nil
	case "vers":
		mf, err := dom.Manifest(nil).Update(fix.Project)
		if err != nil {
			return err
		}
		for _, v := range mf {
			fmt.Printf("%-24s v%d\n", v.Name, v.Vers)
		}
		return nil
	case "ls", "tree":
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		ns, err := lookupNs(fix, path)
		if err != nil {
			return err
		}
		printNs(ns, "", cmd == "tree")
		return nil
	case "mkns", "mkmod":
		if len(args) < 1 {
			return fmt.Errorf("%s needs a path", cmd)
		}
		par, name, err := splitNew(fix, args[0])
		if err != nil {
			return err
		}
		if cmd == "mkns" {
			_, err = fix.CreateNamespace(ctx, par, name)
		} else {
			_, err = fix.CreateModel(ctx, par, name)
		}
		return err
	case "mkinst":
		if len(args) < 2 {
			return fmt.Errorf("mkinst needs a path and a model")
		}
		par, name, err := splitNew(fix, args[0])
		if err != nil {
			return err
		}
		m, ok := fix.Get(args[1]).(*dom.Model)
		if !ok {
			return fmt.Errorf("no model at %q", args[1])
		}
		_, err = fix.CreateInstance(ctx, par, name, m)
		return err
	case "mem":
		if len(args) < 3 {
			return fmt.Errorf("mem needs a model, a name and a value")
		}
		m, ok := fix.Get(args[0]).(*dom.Model)
		if !ok {
			return fmt.Errorf("no model at %q", args[0])
		}
		_, err := fix.CreateMembers(ctx, m, dom.MemberInfo{Name: args[1], Val: parseVal(args[2])})
		return err
	case "set":
		if len(args) < 3 {
			return fmt.Errorf("set needs a path, a name and a value")
		}
		switch o := fix.Get(args[0]).(type) {
		case *dom.Model:
			mem := o.Member(args[1])
			if mem == nil {
				return fmt.Errorf("no member %q", args[1])
			}
			return fix.SetMemberValue(ctx, mem, parseVal(args[2]))
		case *dom.Instance:
			fld := o.Field(args[1])
			if fld == nil {
				return fmt.Errorf("no field %q", args[1])
			}
			return fix.SetFieldValue(ctx, fld, parseVal(args[2]))
		}
		return fmt.Errorf("nothing to set at %q", args[0])
	case "ren":
		if len(args) < 2 {
			return fmt.Errorf("ren needs a path and a name")
		}
		o := fix.Get(args[0])
		if o == nil {
			return fmt.Errorf("no object at %q", args[0])
		}
		return fix.Rename(ctx, o, args[1])
	case "mv":
		if len(args) < 2 {
			return fmt.Errorf("mv needs a path and a destination")
		}
		o := fix.Get(args[0])
		if o == nil {
			return fmt.Errorf("no object at %q", args[0])
		}
		dest, err := lookupNs(fix, args[1])
		if err != nil {
			return err
		}
		return fix.Move(ctx, o, dest)
	case "rm":
		if len(args) < 1 {
			return fmt.Errorf("rm needs a path")
		}
		o := fix.Get(args[0])
		if o == nil {
			return fmt.Errorf("no object at %q", args[0])
		}
		return fix.Delete(ctx, o)
	}
	return fmt.Errorf("unknown command %q, try help", cmd)
}

func lookupNs(fix *domtest.Fixture, path string) (*dom.Namespace, error) {
	ns, ok := fix.Get(path).(*dom.Namespace)
	if !ok {
		return nil, fmt.Errorf("no namespace at %q", path)
	}
	return ns, nil
}

func splitNew(fix *domtest.Fixture, path string) (*dom.Namespace, string, error) {
	name := pth.Base(path)
	if name == "" {
		return nil, "", fmt.Errorf("invalid path %q", path)
	}
	par, _ := pth.Parent(path)
	ns, err := lookupNs(fix, par)
	if err != nil {
		return nil, "", err
	}
	return ns, name, nil
}

func parseVal(s string) val.Value {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return val.NewInt(n)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return val.NewBool(b)
	}
	return val.NewStr(strings.Trim(s, "'"))
}

func printNs(ns *dom.Namespace, indent string, deep bool) {
	for _, e := range ns.Namespaces().All() {
		n := e.(*dom.Namespace)
		fmt.Printf("%sns   %s\n", indent, n.Name())
		if deep {
			printNs(n, indent+"  ", true)
		}
	}
	for _, e := range ns.Models().All() {
		m := e.(*dom.Model)
		fmt.Printf("%smod  %s", indent, m.Name())
		var mems []string
		for _, me := range m.Members().All() {
			mems = append(mems, me.Key())
		}
		if len(mems) > 0 {
			fmt.Printf(" (%s)", strings.Join(mems, ", "))
		}
		fmt.Println()
	}
	for _, e := range ns.Instances().All() {
		i := e.(*dom.Instance)
		fmt.Printf("%sinst %s : %s\n", indent, i.Name(), i.Model().Name())
	}
}
