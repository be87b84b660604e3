package errorx

import (
	"errors"
	"fmt"
)

// 业务错误定义
var (
	ErrJobNotFound    = errors.New("provisioning job not found")
	ErrTenantNotFound = errors.New("tenant not found")
	ErrNotMember      = errors.New("user is not a member of tenant")
	ErrForbidden      = errors.New("operation requires owner or admin role")
)

// ValidationError 非法状态流转等校验错误（客户端错误）
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError 创建校验错误
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation 判断是否校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError 存储层不可用（服务端错误）
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// WrapStorage 包装存储错误，保留原始错误链
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorage 判断是否存储错误
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// TransportError 消息队列发布/消费失败（服务端错误）
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("queue %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// WrapTransport 包装队列传输错误
func WrapTransport(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}

// IsTransport 判断是否传输错误
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
