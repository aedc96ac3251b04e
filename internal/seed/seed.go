// Package seed provides the default event dataset: the member roster of the
// three zones and the three-stage prize catalog.
package seed

import (
	"fmt"

	"districtlottery/internal/models"
)

// MembersPerClub is the size of every generated club.
const MembersPerClub = 20

type zoneClubs struct {
	zone  string
	clubs []string
}

var zones = []zoneClubs{
	{"第一分區", []string{"南區", "逸仙", "逸天", "雲聯網", "逸澤", "黃埔", "逸新", "蘭亭鐵馬", "銀河"}},
	{"第四分區", []string{"南欣", "松山", "民生", "松青", "政愛", "添愛", "泰愛", "文化"}},
	{"第五分區", []string{"府門", "南陽", "明星", "風雲"}},
}

// Roster generates MembersPerClub members for every club. The first member of
// each club is its president (社長). Ids are zero-padded sequence numbers.
func Roster() []models.Participant {
	var out []models.Participant
	n := 1
	for _, z := range zones {
		for _, club := range z.clubs {
			for m := 1; m <= MembersPerClub; m++ {
				title := "社員"
				if m == 1 {
					title = "社長"
				}
				out = append(out, models.Participant{
					ID:    fmt.Sprintf("%03d", n),
					Name:  fmt.Sprintf("社員 %d", n),
					Club:  club,
					Zone:  z.zone,
					Title: title,
				})
				n++
			}
		}
	}
	return out
}

type row struct {
	context, title, sponsor, name, item string
	count                               int
}

// 第一階段 社長獎, keyed by club.
var clubPrizes = []row{
	{"南區", "P", "Queenie", "社長獎", "紅包 $2,000", 3},
	{"逸仙", "P", "Susan", "社長獎", "紅包 $1,000", 3},
	{"逸天", "P", "Jim", "社長獎", "紅包 $1,000", 1},
	{"雲聯網", "P", "Jennifer", "社長獎", "紅包 $1,000", 2},
	{"逸澤", "P", "Andy", "社長獎", "紅包 $1,000", 2},
	{"黃埔", "P", "Alex", "社長獎", "禮品一份", 1},
	{"逸新", "P", "Sandy", "社長獎", "紅包 $1,000", 3},
	{"蘭亭鐵馬", "CP", "Wine", "社長獎", "酒 1 瓶", 1},
	{"銀河", "P", "", "社長獎", "待確認", 0},
	{"南欣", "P", "William", "社長獎", "Edenred即享卡 $1,000", 2},
	{"松山", "P", "MB", "社長獎", "紅包 $1,000", 2},
	{"民生", "P", "Dawson", "社長獎", "年節禮盒", 2},
	{"松青", "P", "Tony", "社長獎", "紅包 $1,000", 2},
	{"政愛", "P", "Alex", "社長獎", "連建興聯名款紅酒", 2},
	{"添愛", "P", "Jerry", "社長獎", "威士忌酒", 2},
	{"泰愛", "P", "Lian", "社長獎", "陶板屋套餐 (2張/份)", 2},
	{"文化", "P", "Sky", "社長獎", "連建興聯名款紅酒", 2},
	{"府門", "P", "Card", "社長獎", "紅包 $1,500", 3},
	{"南陽", "P", "Michael", "社長獎", "紅包 $1,500", 3},
	{"明星", "P", "Mandy", "社長獎", "紅包 $1,500", 3},
	{"風雲", "P", "Reis", "社長獎", "紅包 $1,500", 3},
}

// 第二階段 分區長官獎, keyed by zone.
var zonePrizes = []row{
	{"第一分區", "CGS", "Catherine", "分區長官獎", "日式健走杖 (價值$3,500)", 1},
	{"第一分區", "DAG", "Edward", "分區長官獎", "醫療級靈芝多醣體面膜 (價值$900/盒)", 3},
	{"第一分區", "AG", "Amrita", "分區長官獎", "紅蔘精華飲 (價值$3,210/盒)", 10},
	{"第一分區", "AG", "Amrita", "分區長官獎", "紅包 $3,000", 2},
	{"第四分區", "CGS", "Olin", "分區長官獎", "紅包 $1,000", 2},
	{"第四分區", "DAG", "Daniel", "分區長官獎", "央行馬年紀念幣", 20},
	{"第四分區", "AG", "Fruit", "分區長官獎", "紐西蘭空運櫻桃", 10},
	{"第五分區", "CGS", "Michelle", "分區長官獎", "紅包 $2,000", 3},
	{"第五分區", "DAG", "Archi", "分區長官獎", "紅包 $2,000", 3},
	{"第五分區", "AG", "Peter", "分區長官獎", "茶葉禮盒", 20},
	{"第五分區", "AG", "Peter", "分區長官獎", "紅包 $3,000", 1},
	{"第五分區", "AG", "Peter", "分區長官獎", "紅包 $2,000", 1},
}

// 第三階段 特別獎, district wide.
var districtPrizes = []row{
	{"", "DG", "Jenny", "總監獎", "皇家禮炮威士忌酒 21年份", 1},
	{"", "DGE", "Jessy", "總監當選人獎", "曼谷來回機票", 1},
	{"", "DGN", "Joy", "總監提名人獎", "紅包 $3,000", 1},
	{"", "DGND", "Y.C", "指定總監提名人獎", "禮品 1 份", 1},
	{"", "DS", "Steven", "地區秘書長獎", "家樂福禮券 $5,000", 1},
	{"", "PDG", "Jack Chu", "前總監獎", "紅包 $3,000", 1},
	{"", "PDG", "Tiffany", "前總監獎", "絲巾一條", 1},
}

// Prizes returns the full catalog: club prizes, then zone prizes, then
// district prizes.
func Prizes() []models.Prize {
	var out []models.Prize
	out = appendRows(out, "club", models.ScopeClub, clubPrizes)
	out = appendRows(out, "zone", models.ScopeZone, zonePrizes)
	out = appendRows(out, "dist", models.ScopeDistrict, districtPrizes)
	return out
}

func appendRows(out []models.Prize, prefix string, scope models.Scope, rows []row) []models.Prize {
	for i, r := range rows {
		out = append(out, models.Prize{
			ID:           fmt.Sprintf("%s-%02d", prefix, i+1),
			Name:         r.name,
			Item:         r.item,
			TotalSlots:   r.count,
			Sponsor:      r.sponsor,
			SponsorTitle: r.title,
			Scope:        scope,
			Context:      r.context,
		})
	}
	return out
}
