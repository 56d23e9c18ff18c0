package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/adapters/fs"     //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/adapters/logger" //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/adapters/shell"  //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/engine/runner"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			runner.NodeID,
			logger.NodeID,
			shell.NodeID,
			fs.HasherNodeID,
			fs.ResolverNodeID,
			fs.WalkerNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: application, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	run, err := graft.Dep[*runner.Runner](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	resolver, err := graft.Dep[ports.InputResolver](ctx)
	if err != nil {
		return nil, err
	}

	walker, err := graft.Dep[*fs.Walker](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, run, log, executor, hasher, resolver, walker), nil
}
