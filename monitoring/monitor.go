// Package monitoring serves the state of a running trace over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/sarchlab/pagetrace/mem/cache"
	"github.com/sarchlab/pagetrace/mem/cache/hierarchy"
	"github.com/sarchlab/pagetrace/tracing"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// ThreadSource tells how many threads are being traced.
type ThreadSource interface {
	NumThreads() int
	OrphanAccesses() uint64
}

// Monitor turns a trace replay into a server that can be inspected while it
// runs.
type Monitor struct {
	hierarchy   *hierarchy.Hierarchy
	threads     ThreadSource
	counter     *tracing.AccessCounter
	portNumber  int
	openBrowser bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor in a web browser.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RegisterHierarchy registers the caches to be monitored.
func (m *Monitor) RegisterHierarchy(h *hierarchy.Hierarchy) {
	m.hierarchy = h
}

// RegisterThreadSource registers what reports the traced threads.
func (m *Monitor) RegisterThreadSource(s ThreadSource) {
	m.threads = s
}

// RegisterAccessCounter registers the running access totals.
func (m *Monitor) RegisterAccessCounter(c *tracing.AccessCounter) {
	m.counter = c
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) newRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/threads", m.listThreads)
	r.HandleFunc("/api/accesses", m.listAccesses)
	r.HandleFunc("/api/cache", m.listCacheStats)
	r.HandleFunc("/api/cache/{name}", m.listCacheDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server with a custom port if wanted.
// It returns the URL of the server.
func (m *Monitor) StartServer() string {
	http.Handle("/", m.newRouter())

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring trace replay with %s\n", url)

	go func() {
		err := http.Serve(listener, nil)
		dieOnErr(err)
	}()

	if m.openBrowser {
		err = browser.OpenURL(url)
		if err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}

	return url
}

type threadsRsp struct {
	Threads        int    `json:"threads"`
	OrphanAccesses uint64 `json:"orphan_accesses"`
}

func (m *Monitor) listThreads(w http.ResponseWriter, _ *http.Request) {
	rsp := threadsRsp{}
	if m.threads != nil {
		rsp.Threads = m.threads.NumThreads()
		rsp.OrphanAccesses = m.threads.OrphanAccesses()
	}

	writeJSON(w, rsp)
}

func (m *Monitor) listAccesses(w http.ResponseWriter, _ *http.Request) {
	rsp := tracing.AccessCounts{}
	if m.counter != nil {
		rsp = m.counter.Counts()
	}

	writeJSON(w, rsp)
}

func (m *Monitor) listCacheStats(w http.ResponseWriter, _ *http.Request) {
	stats := map[string]cache.LevelStats{}
	if m.hierarchy != nil {
		stats = m.hierarchy.Stats()
	}

	writeJSON(w, stats)
}

func (m *Monitor) listCacheDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	level := m.findLevelOr404(w, name)
	if level == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(level)
	serializer.SetMaxDepth(1)

	buf := bytes.NewBuffer(nil)
	m.hierarchy.Inspect(func() {
		err := serializer.Serialize(buf)
		dieOnErr(err)
	})

	_, err := w.Write(buf.Bytes())
	dieOnErr(err)
}

type fieldReq struct {
	CacheName string `json:"cache_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	level := m.findLevelOr404(w, req.CacheName)
	if level == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(level)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	buf := bytes.NewBuffer(nil)
	m.hierarchy.Inspect(func() {
		err = serializer.Serialize(buf)
	})
	dieOnErr(err)

	_, err = w.Write(buf.Bytes())
	dieOnErr(err)
}

func (m *Monitor) findLevelOr404(
	w http.ResponseWriter,
	name string,
) *cache.Level {
	if m.hierarchy != nil {
		for _, l := range m.hierarchy.Levels() {
			if l.Name() == name {
				return l
			}
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Cache not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressBarRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	writeJSON(w, rsp)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
