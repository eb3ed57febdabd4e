package main

import (
	"compress/zlib"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

/*
frames are buffered in memory and dumped as compressed gob chunks once a
chunk's worth has arrived. gob skips zero-value fields, so rocks without
trails cost only their position, mass and radius.

float32 is plenty for drawing, and halves the size of a chunk.
*/

// frame -> body id -> body
type renderindex map[uint32]map[uint32]renderbody

type renderbody struct {
	X, Y         float32
	Mass, Radius float32
	Tier         uint8
}

type chunkStore struct {
	dir            string
	framesPerChunk int
	pending        renderindex
	chunks         int

	dumperWG *sync.WaitGroup
	sem      chan struct{}
	m        *sync.Mutex
	err      error // first dump failure
}

func newChunkStore(dir string, framesPerChunk int) (*chunkStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "chunk directory")
	}
	return &chunkStore{
		dir:            dir,
		framesPerChunk: framesPerChunk,
		pending:        make(renderindex, framesPerChunk),

		dumperWG: &sync.WaitGroup{},
		sem:      make(chan struct{}, 4),
		m:        &sync.Mutex{},
	}, nil
}

// adds a frame, dumping the pending frames in the background once there
// are enough of them. frames must arrive from a single goroutine.
func (store *chunkStore) finishedFrame(frame uint32, frameData map[uint32]renderbody) {
	store.pending[frame] = frameData
	if len(store.pending) >= store.framesPerChunk {
		store.flush()
	}
}

func (store *chunkStore) flush() {
	if len(store.pending) == 0 {
		return
	}
	dump, chunk := store.pending, store.chunks
	store.pending = make(renderindex, store.framesPerChunk)
	store.chunks++

	// allow metered file writing and keeping track of
	// remaining "active" dumpers
	store.dumperWG.Add(1)
	go func() {
		store.sem <- struct{}{}
		if err := store.dumper(chunk, dump); err != nil {
			store.m.Lock()
			if store.err == nil {
				store.err = err
			}
			store.m.Unlock()
		}
		<-store.sem
		store.dumperWG.Done()
	}()
}

// dumps the remaining frames and waits for every dumper.
func (store *chunkStore) close() error {
	store.flush()
	store.dumperWG.Wait()
	store.m.Lock()
	defer store.m.Unlock()
	return store.err
}

func chunkName(dir string, chunk int) string {
	return filepath.Join(dir, fmt.Sprintf("%010d.chunk", chunk))
}

func (store *chunkStore) dumper(chunk int, dump renderindex) error {
	start := time.Now()
	name := chunkName(store.dir, chunk)
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "create chunk")
	}
	defer file.Close()

	zw, err := zlib.NewWriterLevel(file, zlib.DefaultCompression)
	if err != nil {
		return errors.Wrap(err, "compress chunk")
	}
	if err := gob.NewEncoder(zw).Encode(dump); err != nil {
		return errors.Wrapf(err, "encode %s", name)
	}
	if err := zw.Close(); err != nil {
		return errors.Wrapf(err, "flush %s", name)
	}
	log.Printf("%s to dump chunk %d, %d frames", time.Since(start), chunk, len(dump))
	return nil
}

// reads a chunk written by a chunkStore.
func readChunk(filename string) (renderindex, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open chunk")
	}
	defer file.Close()

	zr, err := zlib.NewReader(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress %s", filename)
	}
	defer zr.Close()

	var index renderindex
	if err := gob.NewDecoder(zr).Decode(&index); err != nil {
		return nil, errors.Wrapf(err, "decode %s", filename)
	}
	return index, nil
}

func frameToMemory(store *chunkStore, wg *sync.WaitGroup, ch chan *frameJob) {
	if store == nil {
		panic("there is no store")
	}

	for job := range ch {
		frameData := make(map[uint32]renderbody, len(job.Bodies))
		for _, b := range job.Bodies {
			frameData[uint32(b.ID)] = renderbody{
				X:      float32(b.X),
				Y:      float32(b.Y),
				Mass:   float32(b.Mass),
				Radius: float32(b.Radius),
				Tier:   b.Tier,
			}
		}
		store.finishedFrame(uint32(job.Frame), frameData)
	}

	if err := store.close(); err != nil {
		panic(err)
	}
	wg.Done()
}
