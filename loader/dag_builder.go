// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"sort"

	"github.com/linuxdeepin/go-lib/log"
)

// moduleGraph has an edge from every dependency to its dependents.
type moduleGraph struct {
	nodes map[string]struct{}
	edges map[string]map[string]struct{}
	order []string
}

func newModuleGraph() *moduleGraph {
	return &moduleGraph{
		nodes: make(map[string]struct{}),
		edges: make(map[string]map[string]struct{}),
	}
}

// addNode reports whether name was new.
func (g *moduleGraph) addNode(name string) bool {
	if _, ok := g.nodes[name]; ok {
		return false
	}
	g.nodes[name] = struct{}{}
	g.order = append(g.order, name)
	return true
}

func (g *moduleGraph) addEdge(from, to string) {
	g.addNode(from)
	g.addNode(to)
	targets, ok := g.edges[from]
	if !ok {
		targets = make(map[string]struct{})
		g.edges[from] = targets
	}
	targets[to] = struct{}{}
}

// topologicalSort returns the nodes with every dependency before its
// dependents. ok is false on a cycle.
func (g *moduleGraph) topologicalSort() (sorted []string, ok bool) {
	inDegree := make(map[string]int, len(g.nodes))
	for _, name := range g.order {
		inDegree[name] += 0
		for to := range g.edges[name] {
			inDegree[to]++
		}
	}

	var queue []string
	for _, name := range g.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}
	for len(queue) != 0 {
		name := queue[0]
		queue = queue[1:]
		sorted = append(sorted, name)

		targets := make([]string, 0, len(g.edges[name]))
		for to := range g.edges[name] {
			targets = append(targets, to)
		}
		sort.Strings(targets)
		for _, to := range targets {
			inDegree[to]--
			if inDegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}
	return sorted, len(sorted) == len(g.nodes)
}

type DAGBuilder struct {
	modules         Modules
	enablingModules []string
	disableModules  map[string]struct{}
	flag            EnableFlag

	log *log.Logger

	dag *moduleGraph
}

func NewDAGBuilder(loader *Loader, enablingModules []string, disableModules []string, flag EnableFlag) *DAGBuilder {
	disableModulesMap := map[string]struct{}{}
	for _, name := range disableModules {
		if _, ok := loader.modules[name]; !ok {
			loader.log.Warningf("disabled module(%s) is no existed", name)
			continue
		}
		disableModulesMap[name] = struct{}{}
	}

	return &DAGBuilder{
		modules:         loader.modules,
		enablingModules: enablingModules,
		disableModules:  disableModulesMap,
		flag:            flag,
		log:             loader.log,
		dag:             newModuleGraph(),
	}
}

func (builder *DAGBuilder) buildDAG() error {
	queue := make([]string, 0, len(builder.enablingModules))
	for _, name := range builder.enablingModules {
		if builder.dag.addNode(name) {
			queue = append(queue, name)
		}
	}
	for len(queue) != 0 {
		name := queue[0]
		queue = queue[1:]
		module, ok := builder.modules[name]
		if !ok {
			if builder.flag.HasFlag(EnableFlagIgnoreMissingModule) {
				builder.log.Info("no such a module named", name)
				continue
			}
			return &EnableError{ModuleName: name, Code: ErrorMissingModule}
		}
		if _, ok := builder.disableModules[name]; ok {
			if !builder.flag.HasFlag(EnableFlagForceStart) {
				return &EnableError{ModuleName: name, Code: ErrorConflict}
			}
		}
		for _, dependency := range module.GetDependencies() {
			if builder.dag.addNode(dependency) {
				queue = append(queue, dependency)
			}
			builder.dag.addEdge(dependency, name)
		}
	}
	return nil
}

func (builder *DAGBuilder) Execute() (*moduleGraph, error) {
	err := builder.buildDAG()
	if err != nil {
		return nil, err
	}
	return builder.dag, nil
}
