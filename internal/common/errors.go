// Package common はレイヤー間で共有するエラー値を定義します。
package common

import "errors"

var (
	// リポジトリ層のエラー
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)
