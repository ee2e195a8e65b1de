// Command hgr-check runs a smoke check against a running gesture control
// server: it exercises the REST surface and the WebSocket keep-alive and
// reports PASS or FAIL per check.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", "localhost:8000", "server address (host:port)")
	flag.Parse()

	c := &checker{
		base:   "http://" + *addr,
		wsURL:  "ws://" + *addr + "/ws/gesture",
		client: &http.Client{Timeout: 5 * time.Second},
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed, color.Bold),
	}

	cyan := color.New(color.FgCyan)
	cyan.Printf("Checking %s\n\n", *addr)

	c.run("health", c.checkHealth)
	c.run("list devices", c.checkDevices)
	c.run("toggle device", c.checkToggle)
	c.run("set device state", c.checkSetState)
	c.run("unknown device is 404", c.checkUnknownDevice)
	c.run("get settings", c.checkSettings)
	c.run("invalid settings rejected", c.checkInvalidSettings)
	c.run("websocket ping", c.checkPing)

	fmt.Println()
	if c.failed > 0 {
		c.red.Printf("%d of %d checks failed\n", c.failed, c.total)
		os.Exit(1)
	}
	c.green.Printf("all %d checks passed\n", c.total)
}

type checker struct {
	base   string
	wsURL  string
	client *http.Client
	green  *color.Color
	red    *color.Color
	total  int
	failed int
}

func (c *checker) run(name string, fn func() error) {
	c.total++
	if err := fn(); err != nil {
		c.failed++
		c.red.Printf("FAIL  ")
		fmt.Printf("%s: %v\n", name, err)
		return
	}
	c.green.Printf("PASS  ")
	fmt.Println(name)
}

func (c *checker) getJSON(path string, out any) error {
	resp, err := c.client.Get(c.base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *checker) postJSON(path string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	resp, err := c.client.Post(c.base+path, "application/json", &buf)
	if err != nil {
		return nil, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp, nil
}

func (c *checker) checkHealth() error {
	var health struct {
		Status       string `json:"status"`
		TotalDevices int    `json:"total_devices"`
	}
	if err := c.getJSON("/api/health", &health); err != nil {
		return err
	}
	if health.Status != "ok" {
		return fmt.Errorf("status %q", health.Status)
	}
	if health.TotalDevices < 1 {
		return fmt.Errorf("no devices registered")
	}
	return nil
}

func (c *checker) checkDevices() error {
	var devices map[string]struct {
		Name string `json:"name"`
	}
	if err := c.getJSON("/api/devices", &devices); err != nil {
		return err
	}
	if len(devices) == 0 {
		return fmt.Errorf("empty device map")
	}
	return nil
}

func (c *checker) checkToggle() error {
	var before struct {
		State bool `json:"state"`
	}
	if err := c.getJSON("/api/devices/device_1", &before); err != nil {
		return err
	}

	resp, err := c.postJSON("/api/devices/device_1/toggle", nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("toggle status %d", resp.StatusCode)
	}

	var after struct {
		State bool `json:"state"`
	}
	if err := c.getJSON("/api/devices/device_1", &after); err != nil {
		return err
	}
	if after.State == before.State {
		return fmt.Errorf("state did not flip")
	}

	// Restore the original state.
	_, err = c.postJSON("/api/devices/device_1/toggle", nil)
	return err
}

func (c *checker) checkSetState() error {
	resp, err := c.postJSON("/api/devices/device_1/state", map[string]bool{"state": false})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	var d struct {
		State bool `json:"state"`
	}
	if err := c.getJSON("/api/devices/device_1", &d); err != nil {
		return err
	}
	if d.State {
		return fmt.Errorf("state not applied")
	}
	return nil
}

func (c *checker) checkUnknownDevice() error {
	resp, err := c.client.Get(c.base + "/api/devices/no_such_device")
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("expected 404, got %d", resp.StatusCode)
	}
	return nil
}

func (c *checker) checkSettings() error {
	var s struct {
		Confidence float64 `json:"confidence"`
		HoldTime   float64 `json:"hold_time"`
		MaxHands   int     `json:"max_hands"`
	}
	if err := c.getJSON("/api/settings", &s); err != nil {
		return err
	}
	if s.Confidence < 0 || s.Confidence > 1 || s.HoldTime <= 0 || s.MaxHands < 1 {
		return fmt.Errorf("settings out of range: %+v", s)
	}
	return nil
}

func (c *checker) checkInvalidSettings() error {
	resp, err := c.postJSON("/api/settings", map[string]float64{"confidence": 1.5})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("expected 400, got %d", resp.StatusCode)
	}
	return nil
}

func (c *checker) checkPing() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		return err
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&reply); err != nil {
		return err
	}
	if reply.Type != "pong" {
		return fmt.Errorf("expected pong, got %q", reply.Type)
	}
	return nil
}
