package barrier

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidParties(t *testing.T) {
	for _, parties := range []int{0, -1, -10} {
		b, err := New(parties)
		assert.Error(t, err)
		assert.Nil(t, b)
	}
}

func TestWait_SingleParty(t *testing.T) {
	b, err := New(1)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			assert.Equal(t, uint64(i), b.Wait())
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("single party barrier did not release immediately")
	}
	assert.Equal(t, uint64(100), b.Generation())
}

func TestWait_BlocksUntilAllArrive(t *testing.T) {
	const parties = 4
	b, err := New(parties)
	require.NoError(t, err)

	var released atomic.Int32
	var wg sync.WaitGroup

	// Everyone but the last participant.
	for i := 0; i < parties-1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Wait()
			released.Add(1)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), released.Load(), "no participant may leave before all arrive")

	b.Wait()
	wg.Wait()
	assert.Equal(t, int32(parties-1), released.Load())
}

// TestWait_ArrivalDepartureOrdering delays participants by different amounts
// and checks that every departure happens after the last arrival of the same
// cycle.
func TestWait_ArrivalDepartureOrdering(t *testing.T) {
	const (
		parties = 5
		cycles  = 20
	)

	rec := &orderRecorder{}
	b, err := New(parties, WithObserver(rec))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for p := 0; p < parties; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for c := 0; c < cycles; c++ {
				// Stagger participants differently each cycle.
				time.Sleep(time.Duration((p*7+c*3)%5) * time.Millisecond)
				gen := b.WaitAs(p)
				assert.Equal(t, uint64(c), gen)
			}
		}(p)
	}
	wg.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()

	lastArrival := make(map[uint64]int)
	firstDeparture := make(map[uint64]int)
	for i, ev := range rec.events {
		if ev.arrive {
			lastArrival[ev.gen] = i
		} else if _, ok := firstDeparture[ev.gen]; !ok {
			firstDeparture[ev.gen] = i
		}
	}

	require.Len(t, lastArrival, cycles)
	for gen := uint64(0); gen < cycles; gen++ {
		assert.Less(t, lastArrival[gen], firstDeparture[gen],
			"generation %d: a participant departed before the last arrival", gen)
	}
}

// TestWait_Reuse hammers the barrier with participants that re-enter
// immediately after release. A barrier without a generation token loses
// wakeups or lets a fast participant run a cycle ahead here.
func TestWait_Reuse(t *testing.T) {
	const (
		parties = 8
		cycles  = 2000
	)

	b, err := New(parties)
	require.NoError(t, err)

	// counts[c] is incremented by every participant in cycle c before the
	// barrier; after the barrier it must equal parties.
	counts := make([]atomic.Int32, cycles)

	var wg sync.WaitGroup
	for p := 0; p < parties; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := 0; c < cycles; c++ {
				counts[c].Add(1)
				b.Wait()
				if got := counts[c].Load(); got != parties {
					t.Errorf("cycle %d: released with %d arrivals", c, got)
					return
				}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("barrier deadlocked under reuse")
	}
	assert.Equal(t, uint64(cycles), b.Generation())
}

func TestSerial_LeaderRunsWhileOthersWait(t *testing.T) {
	const parties = 4
	b, err := New(parties)
	require.NoError(t, err)

	var shared int
	var calls atomic.Int32
	seen := make([]int, parties)

	var wg sync.WaitGroup
	for p := 0; p < parties; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			b.Serial(p, 0, func() {
				calls.Add(1)
				time.Sleep(10 * time.Millisecond)
				shared = 42
			})
			seen[p] = shared
		}(p)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for p, v := range seen {
		assert.Equal(t, 42, v, "participant %d did not observe leader write", p)
	}
	assert.Equal(t, uint64(2), b.Generation())
}

func TestParties(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Parties())
}

type orderEvent struct {
	participant int
	gen         uint64
	arrive      bool
}

type orderRecorder struct {
	mu     sync.Mutex
	events []orderEvent
}

func (r *orderRecorder) Arrive(participant int, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, orderEvent{participant: participant, gen: gen, arrive: true})
}

func (r *orderRecorder) Depart(participant int, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, orderEvent{participant: participant, gen: gen})
}
