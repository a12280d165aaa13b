package service

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"woo_import_v1_202601/internal/model"
	"woo_import_v1_202601/internal/repository"
	"woo_import_v1_202601/pkg/utils"
	"woo_import_v1_202601/pkg/woo"
)

// ==================== VendorService 卖家/用户身份解析 ====================

// VendorService 把一条外部店铺记录解析成内部 User + Vendor + Owner 成员关系
// 用户匹配按固定优先级，命中即停：
//  1. 归一化真实邮箱精确匹配
//  2. 规范化手机号精确匹配
//  3. 由外部店铺 ID 推导的确定性合成邮箱（重复运行永远落到同一兜底账号）
// 已有值的字段一律不覆盖，只回填空字段
type VendorService struct {
	userRepo   repository.UserRepository
	vendorRepo repository.VendorRepository
	identity   *IdentityService
}

// NewVendorService 创建卖家身份解析服务
func NewVendorService(userRepo repository.UserRepository, vendorRepo repository.VendorRepository, identity *IdentityService) *VendorService {
	return &VendorService{userRepo: userRepo, vendorRepo: vendorRepo, identity: identity}
}

// SyntheticEmail 合成邮箱：仅由外部店铺 ID 决定，保证跨运行稳定
func SyntheticEmail(storeID int64) string {
	return fmt.Sprintf("store-%d@import.invalid", storeID)
}

// NormalizeEmail 小写化 + 语法校验；不合法返回 ok=false
func NormalizeEmail(raw string) (string, bool) {
	e := strings.ToLower(strings.TrimSpace(raw))
	if e == "" {
		return "", false
	}
	if _, err := mail.ParseAddress(e); err != nil {
		return "", false
	}
	return e, true
}

// ResolveStore 解析一条店铺记录，返回 (vendorID, userID)
func (s *VendorService) ResolveStore(ctx context.Context, cache *RunCache, dto woo.StoreDTO) (int64, int64, error) {
	if dto.ID <= 0 {
		return 0, 0, fmt.Errorf("%w: 店铺缺少外部 ID", ErrMalformedRecord)
	}

	user, err := s.resolveUser(ctx, dto)
	if err != nil {
		return 0, 0, err
	}

	vendorID, err := s.upsertVendor(ctx, cache, dto)
	if err != nil {
		return 0, 0, err
	}

	if err := s.ensureOwnerMembership(ctx, vendorID, user.ID); err != nil {
		return 0, 0, err
	}

	return vendorID, user.ID, nil
}

// resolveUser 有序匹配，没有命中就按最优身份信号新建
func (s *VendorService) resolveUser(ctx context.Context, dto woo.StoreDTO) (*model.User, error) {
	realEmail, hasEmail := NormalizeEmail(dto.Email)
	phone := utils.CanonicalPhone(dto.Phone)
	synthetic := SyntheticEmail(dto.ID)

	// 1. 真实邮箱
	if hasEmail {
		u, err := s.userRepo.GetByEmail(ctx, realEmail)
		if err != nil {
			return nil, err
		}
		if u != nil {
			return s.backfill(ctx, u, dto, phone)
		}
	}

	// 2. 手机号
	if phone != "" {
		u, err := s.userRepo.GetByPhone(ctx, phone)
		if err != nil {
			return nil, err
		}
		if u != nil {
			return s.backfill(ctx, u, dto, phone)
		}
	}

	// 3. 合成邮箱兜底
	u, err := s.userRepo.GetByEmail(ctx, synthetic)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return s.backfill(ctx, u, dto, phone)
	}

	// 没有任何命中：新建
	email := synthetic
	if hasEmail {
		email = realEmail
	}
	newUser := &model.User{
		Email:       email,
		Phone:       phone,
		FirstName:   strings.TrimSpace(dto.FirstName),
		LastName:    strings.TrimSpace(dto.LastName),
		DisplayName: strings.TrimSpace(dto.StoreName),
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if repository.IsUniqueViolation(err) {
			// 并发写入者抢先建了同邮箱账号，读回赢家
			if u, ferr := s.userRepo.GetByEmail(ctx, email); ferr == nil && u != nil {
				return u, nil
			}
		}
		return nil, err
	}
	return newUser, nil
}

// backfill 只填空字段，已有值保持不动
func (s *VendorService) backfill(ctx context.Context, u *model.User, dto woo.StoreDTO, phone string) (*model.User, error) {
	changed := false
	if u.Phone == "" && phone != "" {
		u.Phone = phone
		changed = true
	}
	if u.FirstName == "" && strings.TrimSpace(dto.FirstName) != "" {
		u.FirstName = strings.TrimSpace(dto.FirstName)
		changed = true
	}
	if u.LastName == "" && strings.TrimSpace(dto.LastName) != "" {
		u.LastName = strings.TrimSpace(dto.LastName)
		changed = true
	}
	if u.DisplayName == "" && strings.TrimSpace(dto.StoreName) != "" {
		u.DisplayName = strings.TrimSpace(dto.StoreName)
		changed = true
	}
	if changed {
		if err := s.userRepo.Update(ctx, u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// upsertVendor 经身份映射保证一个外部店铺只对应一个内部卖家
func (s *VendorService) upsertVendor(ctx context.Context, cache *RunCache, dto woo.StoreDTO) (int64, error) {
	extID := strconv.FormatInt(dto.ID, 10)

	if cache != nil {
		if id, ok := cache.GetVendorID(extID); ok {
			return id, nil
		}
	}

	vendorID, err := s.identity.GetOrCreate(ctx, cache, model.EntityVendor, extID, utils.Slugify(dto.StoreName),
		func(ctx context.Context) (int64, error) {
			v := ToVendorModel(dto)
			if v.Slug == "" || v.Slug == "attr" {
				v.Slug = "store-" + extID
			}
			if err := s.vendorRepo.Create(ctx, v); err != nil {
				return 0, err
			}
			return v.ID, nil
		})
	if err != nil {
		return 0, err
	}

	// 既有卖家：来源为准刷新对账字段
	v, err := s.vendorRepo.GetByID(ctx, vendorID)
	if err != nil {
		return 0, err
	}
	if v != nil {
		ApplyVendorDTO(v, dto)
		if err := s.vendorRepo.Update(ctx, v); err != nil {
			return 0, err
		}
	}

	if cache != nil {
		cache.PutVendorID(extID, vendorID)
	}
	return vendorID, nil
}

// ensureOwnerMembership 每个卖家恰好一条 Owner 成员关系
// 卖家已有 Owner 行时改指到本次解析出的用户，绝不建第二条；
// 跨运行解析出的用户变了（合成账号 → 真实邮箱账号）也只改指不新建
func (s *VendorService) ensureOwnerMembership(ctx context.Context, vendorID, userID int64) error {
	owner, err := s.vendorRepo.GetOwnerByVendor(ctx, vendorID)
	if err != nil {
		return err
	}
	if owner != nil && owner.UserID == userID {
		return nil
	}

	m, err := s.vendorRepo.GetMemberByUser(ctx, userID)
	if err != nil {
		return err
	}

	if owner != nil {
		// user_id 唯一索引：先清掉该用户挂在别处的旧行，再把本卖家的 Owner 行改指过来
		if m != nil && m.ID != owner.ID {
			if err := s.vendorRepo.DeleteMember(ctx, m.ID); err != nil {
				return err
			}
		}
		owner.UserID = userID
		return s.vendorRepo.UpdateMember(ctx, owner)
	}

	// 卖家还没有 Owner：用户既有成员关系改指到正确卖家
	if m != nil {
		if m.VendorID != vendorID || m.Role != model.MemberRoleOwner {
			m.VendorID = vendorID
			m.Role = model.MemberRoleOwner
			return s.vendorRepo.UpdateMember(ctx, m)
		}
		return nil
	}

	return s.vendorRepo.CreateMember(ctx, &model.VendorMember{
		VendorID: vendorID,
		UserID:   userID,
		Role:     model.MemberRoleOwner,
	})
}

// EnsureDefaultVendor 平台兜底卖家：固定 slug 查找，首次懒创建
func (s *VendorService) EnsureDefaultVendor(ctx context.Context) (int64, error) {
	v, err := s.vendorRepo.GetBySlug(ctx, model.DefaultVendorSlug)
	if err != nil {
		return 0, err
	}
	if v != nil {
		return v.ID, nil
	}
	v = &model.Vendor{Name: "Marketplace", Slug: model.DefaultVendorSlug, Enabled: true}
	if err := s.vendorRepo.Create(ctx, v); err != nil {
		if repository.IsUniqueViolation(err) {
			if v, err = s.vendorRepo.GetBySlug(ctx, model.DefaultVendorSlug); err == nil && v != nil {
				return v.ID, nil
			}
		}
		return 0, err
	}
	return v.ID, nil
}
