package scheduler

// visitState tracks a title during depth-first resolution.
type visitState uint8

const (
	unvisited visitState = iota
	inProgress
	done
)

// frame is one entry of the explicit traversal stack.
type frame struct {
	title string
	next  int // index of the next dependency to visit
}

// Resolve returns a topological order of tasks in which every dependency
// precedes its dependents. Tasks without an ordering constraint keep their
// input order. A dependency loop (including a task depending on itself)
// fails with a *CycleError and no order.
//
// Dependencies naming a title absent from tasks are treated as satisfied and
// never appear in the order.
func Resolve(tasks []TaskSpec) ([]string, error) {
	index := indexTasks(tasks)
	state := make(map[string]visitState, len(tasks))
	order := make([]string, 0, len(tasks))

	var stack []frame
	for _, root := range tasks {
		if state[root.Title] != unvisited {
			continue
		}

		state[root.Title] = inProgress
		stack = append(stack[:0], frame{title: root.Title})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := tasks[index[top.title]].Dependencies

			if top.next == len(deps) {
				state[top.title] = done
				order = append(order, top.title)
				stack = stack[:len(stack)-1]
				continue
			}

			dep := deps[top.next]
			top.next++

			if _, known := index[dep]; !known {
				continue
			}

			switch state[dep] {
			case done:
				continue
			case inProgress:
				return nil, &CycleError{Title: dep, Path: cyclePath(stack, dep)}
			}

			state[dep] = inProgress
			stack = append(stack, frame{title: dep})
		}
	}

	return order, nil
}

// HasCycle reports whether tasks contain a dependency loop.
func HasCycle(tasks []TaskSpec) bool {
	_, err := Resolve(tasks)
	return err != nil
}

// indexTasks maps each title to the position of its first occurrence.
func indexTasks(tasks []TaskSpec) map[string]int {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if _, ok := index[t.Title]; !ok {
			index[t.Title] = i
		}
	}
	return index
}

// cyclePath extracts the loop closing at title from the traversal stack.
func cyclePath(stack []frame, title string) []string {
	start := 0
	for i := range stack {
		if stack[i].title == title {
			start = i
			break
		}
	}

	path := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.title)
	}
	return append(path, title)
}
