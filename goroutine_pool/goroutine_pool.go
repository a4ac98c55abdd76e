package goroutine_pool

import (
	"sync"

	"github.com/panjf2000/ants/v2"
	log "github.com/sirupsen/logrus"
)

// Pool names used by the control plane.
const (
	FlowPushPool  = "flow_push"
	StatsPollPool = "stats_poll"
)

var (
	pools     = make(map[string]*ants.PoolWithFunc)
	poolsLock sync.RWMutex
)

func InitPool(poolType string, poolSize int, taskFunc func(interface{})) {
	poolsLock.Lock()
	defer poolsLock.Unlock()

	if p, exists := pools[poolType]; exists {
		p.Release()
	}

	pool, err := ants.NewPoolWithFunc(poolSize, taskFunc)
	if err != nil {
		log.Errorf("NewPoolWithFunc failed, poolType=%s : err=%v", poolType, err)
		return
	}

	pools[poolType] = pool
}

func GetPool(poolType string) *ants.PoolWithFunc {
	poolsLock.RLock()
	defer poolsLock.RUnlock()

	return pools[poolType]
}

func ReleasePool(poolType string) {
	poolsLock.Lock()
	defer poolsLock.Unlock()

	if p, exists := pools[poolType]; exists {
		p.Release()
		delete(pools, poolType)
	}
}

func ReleaseAllPools() {
	poolsLock.Lock()
	defer poolsLock.Unlock()

	for k, p := range pools {
		p.Release()
		delete(pools, k)
	}
}
