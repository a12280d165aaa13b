package service

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"woo_import_v1_202601/internal/model"
	"woo_import_v1_202601/internal/repository"
	"woo_import_v1_202601/pkg/utils"
	"woo_import_v1_202601/pkg/woo"
)

// ==================== VariantService 变体/报价对账 ====================

// VariantService 按商品做变体与报价对账
// 状态机只有两态：simple / variable
//   - 首次观察到多购买配置时 simple -> variable
//   - 反向迁移从不自动发生：来源哪怕回报零变体，variable 也保持不变，
//     避免破坏性意外（既有行为，按文档保留）
// variable 商品每次运行都是整组置换：旧变体组全删，按最新来源重建；
// 变体行的内部 ID 经身份映射续用，跨运行保持稳定
type VariantService struct {
	productRepo repository.ProductRepository
	offerRepo   repository.OfferRepository
	attrSvc     *AttributeService
	identity    *IdentityService
	batch       *BatchController
}

// NewVariantService 创建变体对账服务
func NewVariantService(
	productRepo repository.ProductRepository,
	offerRepo repository.OfferRepository,
	attrSvc *AttributeService,
	identity *IdentityService,
	batch *BatchController,
) *VariantService {
	return &VariantService{
		productRepo: productRepo,
		offerRepo:   offerRepo,
		attrSvc:     attrSvc,
		identity:    identity,
		batch:       batch,
	}
}

// ReconcileSimple 简单商品：只维护报价头（价格/库存），没有变体组
func (s *VariantService) ReconcileSimple(ctx context.Context, cache *RunCache, product *model.Product, dto woo.ProductDTO, defaultVendorID int64) error {
	offer, err := s.ensureOffer(ctx, product, defaultVendorID)
	if err != nil {
		return err
	}

	offer.Price = utils.ResolvePrice(dto.SalePrice, dto.RegularPrice, dto.Price)
	offer.StockStatus = utils.MapStockStatus(dto.StockStatus)
	offer.StockQty = dto.StockQuantity
	return s.batch.GuardedSave(ctx, offer)
}

// ReconcileVariable variable 商品的整组对账
// 返回重建出的变体行数
func (s *VariantService) ReconcileVariable(ctx context.Context, cache *RunCache, product *model.Product, dto woo.ProductDTO, variations []woo.VariationDTO, defaultVendorID int64) (int, error) {
	// simple -> variable 单向迁移
	if product.Kind != model.ProductKindVariable {
		product.Kind = model.ProductKindVariable
		if err := s.batch.GuardedSave(ctx, product); err != nil {
			return 0, err
		}
	}

	// 1. 确保报价存在，报价头价格来自父记录
	offer, err := s.ensureOffer(ctx, product, defaultVendorID)
	if err != nil {
		return 0, err
	}
	offer.Price = utils.ResolvePrice(dto.SalePrice, dto.RegularPrice, dto.Price)
	offer.StockStatus = utils.MapStockStatus(dto.StockStatus)
	offer.StockQty = dto.StockQuantity
	if err := s.batch.GuardedSave(ctx, offer); err != nil {
		return 0, err
	}

	// 2. 整组置换的前半段：旧组全删
	//    先冲掉缓冲里可能还挂着旧变体的写，再动手删
	if err := s.batch.Flush(ctx); err != nil {
		return 0, err
	}
	if err := s.productRepo.DeleteVariantSet(ctx, product.ID); err != nil {
		return 0, err
	}

	// 3. 按最新来源重建
	created := 0
	for i, vdto := range variations {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		if vdto.ID <= 0 {
			log.Printf("[VariantService] 商品 %d 变体缺外部 ID，跳过", product.ID)
			continue
		}

		variant, err := s.recreateVariant(ctx, cache, product.ID, i, vdto)
		if err != nil {
			return created, err
		}

		// 属性取值行
		for _, av := range vdto.Attributes {
			attr, err := s.attrSvc.EnsureAttribute(ctx, cache, SourceAttr{
				GlobalID: av.ID,
				Name:     av.Name,
				Options:  []string{av.Option},
			})
			if err != nil {
				log.Printf("[VariantService] 变体 %d 属性 %q 归一化失败，跳过: %v", vdto.ID, av.Name, err)
				continue
			}
			optionID, err := s.attrSvc.EnsureOption(ctx, cache, attr.ID, av.Option)
			if err != nil {
				log.Printf("[VariantService] 变体 %d 属性 %q 取值 %q 跳过: %v", vdto.ID, av.Name, av.Option, err)
				continue
			}
			value := &model.ProductVariantAttributeValue{
				VariantID:   variant.ID,
				AttributeID: attr.ID,
				OptionID:    optionID,
			}
			if err := s.batch.Create(ctx, value); err != nil {
				return created, err
			}
		}

		// 变体级报价行
		if err := s.batch.Create(ctx, ToOfferVariantModel(offer.ID, variant.ID, vdto)); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

// ensureOffer 确保 (卖家, 商品) 的报价存在
// 商品已归属卖家时用归属卖家，否则用平台兜底卖家
func (s *VariantService) ensureOffer(ctx context.Context, product *model.Product, defaultVendorID int64) (*model.VendorOffer, error) {
	vendorID := product.VendorID
	if vendorID <= 0 {
		vendorID = defaultVendorID
	}
	if vendorID <= 0 {
		return nil, fmt.Errorf("商品 %d 没有可用卖家（含兜底）", product.ID)
	}

	offer, err := s.offerRepo.GetByVendorProduct(ctx, vendorID, product.ID)
	if err != nil {
		return nil, err
	}
	if offer != nil {
		return offer, nil
	}

	// 可能挂在旧卖家下（归属阶段稍后会改指），先复用
	offer, err = s.offerRepo.GetAnyByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if offer != nil {
		return offer, nil
	}

	offer = &model.VendorOffer{VendorID: vendorID, ProductID: product.ID}
	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// recreateVariant 重建单个变体行，内部 ID 经身份映射续用
func (s *VariantService) recreateVariant(ctx context.Context, cache *RunCache, productID int64, position int, dto woo.VariationDTO) (*model.ProductVariant, error) {
	extID := strconv.FormatInt(dto.ID, 10)

	// 老变体：映射已有内部 ID，用同一主键重插，保证 ID 跨运行稳定
	if internalID, found, err := s.identity.Find(ctx, model.EntityVariant, extID); err != nil {
		return nil, err
	} else if found {
		v := ToVariantModel(productID, position, dto)
		v.ID = internalID
		if err := s.productRepo.CreateVariant(ctx, v); err != nil {
			return nil, err
		}
		return v, nil
	}

	// 新变体：建行 + 建映射一步走
	var created *model.ProductVariant
	_, err := s.identity.GetOrCreate(ctx, cache, model.EntityVariant, extID, dto.SKU,
		func(ctx context.Context) (int64, error) {
			v := ToVariantModel(productID, position, dto)
			if err := s.productRepo.CreateVariant(ctx, v); err != nil {
				return 0, err
			}
			created = v
			return v.ID, nil
		})
	if err != nil {
		return nil, err
	}
	if created == nil {
		// 竞争下别人建了映射：按映射 ID 重插本行
		internalID, _, ferr := s.identity.Find(ctx, model.EntityVariant, extID)
		if ferr != nil {
			return nil, ferr
		}
		v := ToVariantModel(productID, position, dto)
		v.ID = internalID
		if err := s.productRepo.CreateVariant(ctx, v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return created, nil
}
