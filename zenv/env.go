// Package zenv is the host-facing driver: it loads a story, feeds it one
// command per step and hands back cleaned observations, world diffs and
// snapshots. It is the layer a reinforcement-learning loop talks to.
//
// Matching the original design, at most one environment is live per
// process; Setup enforces it and Shutdown releases it.
package zenv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tlgreaves/grue/zerr"
	"github.com/tlgreaves/grue/zmachine"
	"github.com/tlgreaves/grue/zobject"
	"github.com/xyproto/env/v2"
)

// ZObject is the flat projection of one object-tree entry handed to
// analysis code: links, the first four attribute bytes and up to sixteen
// property ids.
type ZObject struct {
	Num        uint16
	Name       string
	Parent     uint16
	Sibling    uint16
	Child      uint16
	Attr       [4]uint8
	Properties [16]uint8
}

// Env drives a single story.
type Env struct {
	z         *zmachine.Interpreter
	binding   Binding
	seed      int
	world     string // last cleaned observation, for victory/game-over tests
	stepLimit int
}

var active *Env

// Setup loads a story file, seeds the interpreter deterministically, plays
// through the title's intro actions and runs to the first prompt. It must
// be called exactly once before any Step; a second environment requires a
// Shutdown first.
func Setup(storyPath string, seed int) (*Env, string, error) {
	if active != nil {
		return nil, "", fmt.Errorf("an environment is already active; call Shutdown first")
	}

	storyData, err := os.ReadFile(storyPath)
	if err != nil {
		return nil, "", fmt.Errorf("cannot open story file: %w", err)
	}

	z, err := zmachine.LoadStory(storyData, nil)
	if err != nil {
		return nil, "", err
	}

	stem := strings.TrimSuffix(filepath.Base(storyPath), filepath.Ext(storyPath))
	binding := lookupBinding(stem)

	e := &Env{
		z:         z,
		binding:   binding,
		seed:      seed,
		stepLimit: env.Int("GRUE_STEP_LIMIT", 10_000_000),
	}

	z.Errors.Mode = zerr.ParseMode(env.Str("GRUE_ERR_MODE", "once"))
	z.StripInput = binding.StripInput
	z.SeedRandom(seed)
	z.InitUndo(env.Int("GRUE_UNDO_SLOTS", 20))

	active = e

	if _, err := e.runToPrompt(); err != nil {
		active = nil
		return nil, "", err
	}

	for _, action := range binding.IntroActions {
		z.SetNextInput(action)
		if _, err := e.runToPrompt(); err != nil {
			active = nil
			return nil, "", err
		}
	}

	observation := binding.CleanObservation(z.TakeOutput())
	e.world = observation
	return e, observation, nil
}

// Shutdown releases the process-wide environment slot.
func (e *Env) Shutdown() {
	if active == e {
		active = nil
	}
}

func (e *Env) runToPrompt() (zmachine.StopReason, error) {
	reason := e.z.RunToInput(e.stepLimit)
	if reason == zmachine.Stalled {
		return reason, fmt.Errorf("story ran %d instructions without asking for input", e.stepLimit)
	}
	return reason, nil
}

// Step feeds one command to the story and runs it to the next prompt,
// returning the cleaned observation.
func (e *Env) Step(action string) (string, error) {
	e.z.ClearWorldDiff()
	e.z.SetNextInput(strings.TrimRight(action, "\r\n"))

	if _, err := e.runToPrompt(); err != nil {
		return "", err
	}

	observation := e.binding.CleanObservation(e.z.TakeOutput())
	e.world = observation
	return observation, nil
}

// SaveStr serialises the whole machine state. Snapshots are taken at the
// input boundary so restoring one resumes exactly at the same prompt.
func (e *Env) SaveStr() ([]byte, error) {
	data := e.z.SaveQuetzal()
	if data == nil {
		return nil, fmt.Errorf("cannot save while inside an interrupt routine")
	}
	return data, nil
}

// RestoreStr applies a snapshot produced by SaveStr and re-seeds the RNG so
// replays stay deterministic.
func (e *Env) RestoreStr(data []byte) error {
	if err := e.z.RestoreSnapshot(data); err != nil {
		return err
	}
	e.z.TakeOutput() // drop any restore chatter
	e.z.SeedRandom(e.seed)
	return nil
}

// GetRAMSize returns the writable memory size in bytes.
func (e *Env) GetRAMSize() int {
	return len(e.z.Core.DynamicMemory())
}

// GetRAM copies out dynamic memory.
func (e *Env) GetRAM() []byte {
	dynamic := e.z.Core.DynamicMemory()
	out := make([]byte, len(dynamic))
	copy(out, dynamic)
	return out
}

// GetStackSize returns the stack capacity in words.
func (e *Env) GetStackSize() int {
	return zmachine.StackSize
}

// GetStack copies out the value stack.
func (e *Env) GetStack() []uint16 {
	words := e.z.StackWords()
	return words[:]
}

// GetPC returns the current program counter.
func (e *Env) GetPC() uint32 {
	return e.z.PC()
}

// GetZArgs returns the operand registers of the last instruction.
func (e *Env) GetZArgs() [8]uint16 {
	return e.z.ZArgs()
}

// GetScore reads the per-title score counter out of dynamic memory.
func (e *Env) GetScore() int {
	if e.binding.Score == nil {
		return 0
	}
	return e.binding.Score(e.z.Core.DynamicMemory())
}

// GetMoves reads the per-title move counter.
func (e *Env) GetMoves() int {
	if e.binding.Moves == nil {
		return 0
	}
	return e.binding.Moves(e.z.Core.DynamicMemory())
}

// GetMaxScore returns the title's winning score, 0 when unknown.
func (e *Env) GetMaxScore() int {
	return e.binding.MaxScore
}

// GetSelfObject returns the object number of the player.
func (e *Env) GetSelfObject() uint16 {
	return e.binding.SelfObject
}

// GetNumWorldObjs returns the per-title object-count ceiling.
func (e *Env) GetNumWorldObjs() int {
	return e.binding.NumWorldObjs
}

// Victory reports whether the last observation contains the title's
// winning text.
func (e *Env) Victory() bool {
	return strings.Contains(e.world, e.binding.VictoryText)
}

// GameOver reports whether the last observation contains the title's death
// text.
func (e *Env) GameOver() bool {
	return strings.Contains(e.world, e.binding.GameOverText)
}

// GetObject projects one object-tree entry. Returns false for object 0 or
// numbers past the title's ceiling.
func (e *Env) GetObject(num uint16) (ZObject, bool) {
	if num == 0 || (e.binding.NumWorldObjs > 0 && int(num) > e.binding.NumWorldObjs) {
		return ZObject{}, false
	}

	obj := zobject.GetObject(num, &e.z.Core, e.z.Alphabets)

	out := ZObject{
		Num:     num,
		Name:    obj.Name,
		Parent:  obj.Parent,
		Sibling: obj.Sibling,
		Child:   obj.Child,
	}
	for i := 0; i < 4; i++ {
		out.Attr[i] = e.z.Core.ReadByte(obj.BaseAddress + uint32(i))
	}

	propAddr := obj.FirstPropertyAddress(&e.z.Core)
	for i := 0; i < 16 && e.z.Core.ReadByte(propAddr) != 0; i++ {
		prop := zobject.GetPropertyByAddress(propAddr, &e.z.Core)
		out.Properties[i] = prop.Id
		propAddr = prop.DataAddress + uint32(prop.Length)
	}

	return out, true
}

// GetWorldObjects projects the whole object table up to the title ceiling.
func (e *Env) GetWorldObjects() []ZObject {
	count := e.binding.NumWorldObjs
	if count == 0 {
		return nil
	}
	objects := make([]ZObject, 0, count)
	for n := 1; n <= count; n++ {
		if obj, ok := e.GetObject(uint16(n)); ok {
			objects = append(objects, obj)
		}
	}
	return objects
}

// GetWorldDiff returns the step's object mutations with the per-title
// filters applied.
func (e *Env) GetWorldDiff() zmachine.WorldDiff {
	raw := e.z.WorldDiff()
	diff := zmachine.WorldDiff{}

	for _, m := range raw.Moves {
		if !e.binding.IgnoreMovedObj(m.Object, m.Value) {
			diff.Moves = append(diff.Moves, m)
		}
	}
	for _, a := range raw.AttrSets {
		if !e.binding.IgnoreAttrSet(a.Object, a.Value) {
			diff.AttrSets = append(diff.AttrSets, a)
		}
	}
	for _, a := range raw.AttrClears {
		if !e.binding.IgnoreAttrClear(a.Object, a.Value) {
			diff.AttrClears = append(diff.AttrClears, a)
		}
	}

	return diff
}

// WorldChanged reports whether the last step left any non-filtered trace on
// the object tree.
func (e *Env) WorldChanged() bool {
	diff := e.GetWorldDiff()
	return len(diff.Moves) > 0 || len(diff.AttrSets) > 0 || len(diff.AttrClears) > 0
}

// TeleportObj relocates a single object, exactly like the guest's own
// insert_obj.
func (e *Env) TeleportObj(obj uint16, dest uint16) {
	e.z.MoveObject(obj, dest)
}

// TeleportTree relocates an object together with its trailing siblings and
// all their descendants.
func (e *Env) TeleportTree(obj uint16, dest uint16) {
	e.z.MoveTree(obj, dest)
}

// Interpreter exposes the underlying machine for tooling that needs more
// than the step interface.
func (e *Env) Interpreter() *zmachine.Interpreter {
	return e.z
}
