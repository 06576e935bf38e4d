package compiler

// UnusedMethods returns "Class.method" for every method that no reachable
// body calls. Reachability starts at main and follows call sites
// transitively. targets is the Analyzer's call resolution; a call it does
// not resolve marks every method of that name as used.
func UnusedMethods(prog *Program, targets map[*MethodCall]string) []string {
	decls := make(map[string]*MethodDecl)
	byName := make(map[string][]string)
	var order []string
	for _, cls := range prog.Classes {
		for _, m := range cls.Methods {
			key := cls.Name + "." + m.Name
			decls[key] = m
			byName[m.Name] = append(byName[m.Name], key)
			order = append(order, key)
		}
	}

	reachable := make(map[string]bool)
	var worklist []string

	addReachable := func(key string) {
		if !reachable[key] {
			reachable[key] = true
			worklist = append(worklist, key)
		}
	}

	scan := func(n Node) {
		Walk(n, func(n Node) bool {
			call, ok := n.(*MethodCall)
			if !ok {
				return true
			}
			if cls, ok := targets[call]; ok {
				addReachable(cls + "." + call.Method)
			} else {
				for _, key := range byName[call.Method] {
					addReachable(key)
				}
			}
			return true
		})
	}

	scan(prog.Main)
	for len(worklist) > 0 {
		curr := worklist[0]
		worklist = worklist[1:]
		if m, ok := decls[curr]; ok {
			scan(m)
		}
	}

	var unused []string
	for _, key := range order {
		if !reachable[key] {
			unused = append(unused, key)
		}
	}
	return unused
}
