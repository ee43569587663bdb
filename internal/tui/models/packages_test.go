// SPDX-FileCopyrightText: 2025 The Flowdeck Authors
// SPDX-License-Identifier: EUPL-1.2

package models

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/internal/domain"
	"github.com/flowdeck/flowdeck/internal/tui/styles"
)

type fakeLister struct {
	packages    []domain.InstalledPackage
	err         error
	listCalls   atomic.Int32
	invalidated atomic.Int32
}

func (f *fakeLister) ListInstalled(_ context.Context) ([]domain.InstalledPackage, error) {
	f.listCalls.Add(1)

	if f.err != nil {
		return nil, f.err
	}

	return f.packages, nil
}

func (f *fakeLister) Invalidate() {
	f.invalidated.Add(1)
}

func newTestPackages(t *testing.T, lister *fakeLister) *Packages {
	t.Helper()

	model := NewPackages(t.Context(), styles.New(), lister)

	// Run the initial fetch synchronously.
	msg := model.Init()()

	updated, _ := model.Update(msg)

	packagesModel, ok := updated.(*Packages)
	require.True(t, ok)

	return packagesModel
}

func TestPackages_LoadsInstalledList(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{packages: []domain.InstalledPackage{
		{Name: "pandas", Version: "2.3.1"},
		{Name: "numpy", Version: "1.26.4"},
	}}

	model := newTestPackages(t, lister)

	view := model.View()
	require.Contains(t, view, "pandas")
	require.Contains(t, view, "2.3.1")
	require.Contains(t, view, "numpy")

	selected, ok := model.Selected()
	require.True(t, ok)
	require.Equal(t, "pandas", selected.Name)
}

func TestPackages_LoadFailureShown(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{err: errors.New("connection refused")}

	model := newTestPackages(t, lister)

	require.Contains(t, model.View(), "connection refused")
}

func TestPackages_CursorMovement(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{packages: []domain.InstalledPackage{
		{Name: "pandas", Version: "2.3.1"},
		{Name: "numpy", Version: "1.26.4"},
	}}

	model := newTestPackages(t, lister)

	updated, _ := model.Update(keyMsg("j"))
	model = updated.(*Packages)

	selected, ok := model.Selected()
	require.True(t, ok)
	require.Equal(t, "numpy", selected.Name)

	// Stops at the end
	updated, _ = model.Update(keyMsg("j"))
	model = updated.(*Packages)

	selected, _ = model.Selected()
	require.Equal(t, "numpy", selected.Name)
}

func TestPackages_InstallInputValidSpecNavigates(t *testing.T) {
	t.Parallel()

	model := newTestPackages(t, &fakeLister{})

	updated, _ := model.Update(keyMsg("i"))
	model = updated.(*Packages)

	for _, r := range "pandas" {
		updated, _ = model.Update(keyMsg(string(r)))
		model = updated.(*Packages)
	}

	updated, cmd := model.Update(keyMsg("enter"))
	model = updated.(*Packages)
	require.NotNil(t, cmd)

	msg := cmd()

	navigate, ok := msg.(NavigateMsg)
	require.True(t, ok)
	require.Equal(t, ProgressScreen, navigate.Screen)

	data, ok := navigate.Data.(OperationData)
	require.True(t, ok)
	require.Equal(t, domain.KindInstall, data.Operation.Kind)
	require.Equal(t, "pandas", data.Operation.Key)
}

func TestPackages_InstallInputRejectsInvalidSpec(t *testing.T) {
	t.Parallel()

	model := newTestPackages(t, &fakeLister{})

	updated, _ := model.Update(keyMsg("i"))
	model = updated.(*Packages)

	for _, r := range "bad;spec" {
		updated, _ = model.Update(keyMsg(string(r)))
		model = updated.(*Packages)
	}

	updated, cmd := model.Update(keyMsg("enter"))
	model = updated.(*Packages)

	require.Nil(t, cmd)
	require.Contains(t, model.View(), "invalid package name")
}

func TestPackages_UninstallConfirmFlow(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{packages: []domain.InstalledPackage{
		{Name: "pandas", Version: "2.3.1"},
	}}

	model := newTestPackages(t, lister)

	updated, _ := model.Update(keyMsg("u"))
	model = updated.(*Packages)

	require.Contains(t, model.View(), "Uninstall pandas?")

	// Declining returns to browsing without navigating
	updated, cmd := model.Update(keyMsg("n"))
	model = updated.(*Packages)
	require.Nil(t, cmd)

	// Confirming navigates to the progress screen
	updated, _ = model.Update(keyMsg("u"))
	model = updated.(*Packages)

	_, cmd = model.Update(keyMsg("y"))
	require.NotNil(t, cmd)

	navigate, ok := cmd().(NavigateMsg)
	require.True(t, ok)
	require.Equal(t, ProgressScreen, navigate.Screen)

	data, ok := navigate.Data.(OperationData)
	require.True(t, ok)
	require.Equal(t, domain.KindUninstall, data.Operation.Kind)
	require.Equal(t, "pandas", data.Operation.Key)
}

func TestPackages_RestoreConfirmFlow(t *testing.T) {
	t.Parallel()

	model := newTestPackages(t, &fakeLister{})

	updated, _ := model.Update(keyMsg("r"))
	model = updated.(*Packages)

	require.Contains(t, model.View(), "Restore the base environment?")

	_, cmd := model.Update(keyMsg("y"))
	require.NotNil(t, cmd)

	navigate, ok := cmd().(NavigateMsg)
	require.True(t, ok)

	data, ok := navigate.Data.(OperationData)
	require.True(t, ok)
	require.Equal(t, domain.KindRestore, data.Operation.Kind)
	require.Equal(t, domain.RestoreKey, data.Operation.Key)
}

func TestPackages_OperationFinishedRefreshesList(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{packages: []domain.InstalledPackage{
		{Name: "pandas", Version: "2.3.1"},
	}}

	model := newTestPackages(t, lister)
	require.Equal(t, int32(1), lister.listCalls.Load())

	updated, cmd := model.Update(OperationFinishedMsg{})
	model = updated.(*Packages)
	require.NotNil(t, cmd)
	require.Equal(t, int32(1), lister.invalidated.Load())

	// Deliver the reload result
	updated, _ = model.Update(cmd())
	model = updated.(*Packages)

	require.Equal(t, int32(2), lister.listCalls.Load())
	require.Contains(t, model.View(), "pandas")
}

func TestPackages_EscReturnsToMenu(t *testing.T) {
	t.Parallel()

	model := newTestPackages(t, &fakeLister{})

	_, cmd := model.Update(keyMsg("esc"))
	require.NotNil(t, cmd)

	navigate, ok := cmd().(NavigateMsg)
	require.True(t, ok)
	require.Equal(t, MenuScreen, navigate.Screen)
}
