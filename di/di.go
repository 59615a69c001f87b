// Package di wires the session guard components into a samber/do injector.
package di

import "github.com/samber/do/v2"

type Injector = do.Injector

type RootScope = do.RootScope

var New = do.New
