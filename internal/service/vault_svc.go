package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

// ==================== VaultService 凭证保险库 ====================

// 密文前缀，用来区分已加密值和历史遗留的明文值
const vaultPrefix = "enc:v1:"

// VaultService 平台 API 凭证的加解密
// 引擎侧只用 Decrypt；Encrypt 留给设置接口写入时用
// Decrypt 对明文输入幂等：没有密文前缀的值原样返回
type VaultService struct {
	gcm cipher.AEAD
}

// NewVaultService 创建保险库，masterKey 任意长度，内部做 SHA-256 派生
func NewVaultService(masterKey string) (*VaultService, error) {
	if masterKey == "" {
		return nil, fmt.Errorf("加密主密钥不能为空")
	}

	key := sha256.Sum256([]byte(masterKey))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("初始化 AES 失败: %v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("初始化 GCM 失败: %v", err)
	}

	return &VaultService{gcm: gcm}, nil
}

// Encrypt 加密明文，输出 enc:v1: 前缀 + base64(nonce + 密文)
func (v *VaultService) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("生成 nonce 失败: %v", err)
	}

	sealed := v.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return vaultPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt 解密，明文输入（无前缀）原样返回
func (v *VaultService) Decrypt(value string) (string, error) {
	if len(value) < len(vaultPrefix) || value[:len(vaultPrefix)] != vaultPrefix {
		// 历史数据可能直接存了明文
		return value, nil
	}

	sealed, err := base64.StdEncoding.DecodeString(value[len(vaultPrefix):])
	if err != nil {
		return "", fmt.Errorf("密文 base64 解码失败: %v", err)
	}

	nonceSize := v.gcm.NonceSize()
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("密文长度不足")
	}

	plaintext, err := v.gcm.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("凭证解密失败: %v", err)
	}

	return string(plaintext), nil
}
