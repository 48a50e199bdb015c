package errors

import "errors"

// ErrLocked 互斥锁已被其他操作持有（如导入正在进行）
var ErrLocked = errors.New("操作正在进行中，请稍后重试")

// ErrStorageDisabled 对象存储未配置
var ErrStorageDisabled = errors.New("对象存储未启用")

// ErrTransportDisabled 发件通道未配置
var ErrTransportDisabled = errors.New("发件通道未启用")
