package crawler

// State tracks the crawl frontier and visited pages. It is owned by a single
// crawl and is not safe for concurrent use.
type State struct {
	visited  map[string]struct{}
	queued   map[string]struct{}
	failed   map[string]struct{}
	order    []string
	frontier []string

	// Processed counts pages taken from the frontier and visited
	Processed int
	// Budget is the maximum number of pages to process
	Budget int
}

// NewState seeds a frontier with seed
func NewState(seed string, budget int) *State {
	s := &State{
		visited: make(map[string]struct{}),
		queued:  make(map[string]struct{}),
		failed:  make(map[string]struct{}),
		Budget:  budget,
	}
	s.Enqueue([]string{seed}, 1)
	return s
}

// Done reports whether the frontier is empty or the budget is spent
func (s *State) Done() bool {
	return len(s.frontier) == 0 || s.Processed >= s.Budget
}

// Next pops the next frontier URL
func (s *State) Next() (string, bool) {
	if len(s.frontier) == 0 {
		return "", false
	}
	u := s.frontier[0]
	s.frontier = s.frontier[1:]
	delete(s.queued, u)
	return u, true
}

// Visit marks u visited; it returns false if u was visited before
func (s *State) Visit(u string) bool {
	if _, ok := s.visited[u]; ok {
		return false
	}
	s.visited[u] = struct{}{}
	s.order = append(s.order, u)
	return true
}

// Visited reports whether u was visited
func (s *State) Visited(u string) bool {
	_, ok := s.visited[u]
	return ok
}

// Fail records that u could not be opened. Failed URLs are neither visited
// nor queued again.
func (s *State) Fail(u string) {
	s.failed[u] = struct{}{}
}

// Known reports whether u was visited, failed or is waiting in the frontier
func (s *State) Known(u string) bool {
	if s.Visited(u) {
		return true
	}
	if _, ok := s.failed[u]; ok {
		return true
	}
	_, ok := s.queued[u]
	return ok
}

// Enqueue appends up to limit URLs that are not yet known and returns how many were added
func (s *State) Enqueue(urls []string, limit int) int {
	added := 0
	for _, u := range urls {
		if added == limit {
			break
		}
		if u == "" || s.Known(u) {
			continue
		}
		s.frontier = append(s.frontier, u)
		s.queued[u] = struct{}{}
		added++
	}
	return added
}

// VisitedURLs lists visited URLs in visit order
func (s *State) VisitedURLs() []string {
	return append([]string(nil), s.order...)
}

// Pending is the number of URLs waiting in the frontier
func (s *State) Pending() int {
	return len(s.frontier)
}
