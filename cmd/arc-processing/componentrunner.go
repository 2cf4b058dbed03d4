package main

import (
	"log"
	"sync"
)

type runnable interface {
	Run() error
}

// componentGroup runs the long-lived daemon components and remembers
// whether any of them stopped with an error
type componentGroup struct {
	wg sync.WaitGroup

	mutex  sync.Mutex
	failed bool
}

func (g *componentGroup) run(name string, component runnable) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		if err := component.Run(); err != nil {
			log.Printf("%s has stopped with error %v", name, err)
			g.mutex.Lock()
			g.failed = true
			g.mutex.Unlock()
			return
		}
		log.Printf("%s has stopped normally", name)
	}()
}

// wait blocks until every component has stopped and reports whether any
// of them failed
func (g *componentGroup) wait() bool {
	g.wg.Wait()

	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.failed
}
