package x12

// =========== Sample Interchanges ===========

const sample835 = "ISA*00*          *00*          *ZZ*SENDER         *ZZ*RECEIVER       *230101*1200*^*00501*000000001*0*P*:~" +
	"GS*HP*SENDER*RECEIVER*20230101*1200*1*X*005010X221A1~" +
	"ST*835*0001~" +
	"BPR*I*1500.00*C*ACH*CCP*01*999999999*DA*123456789*9876543210**01*999999999*DA*987654321*20230115~" +
	"TRN*1*ABC123456*1234567890~" +
	"DTM*405*20230115~" +
	"N1*PR*ACME INSURANCE CO*XV*12345~" +
	"N1*PE*DR SMITH MEDICAL GROUP*XX*1234567890~" +
	"CLP*CLM001*1*500.00*400.00*50.00*12*PAYERCLM001~" +
	"NM1*QC*1*DOE*JOHN****MI*MEM001~" +
	"NM1*82*1*SMITH*JAMES****XX*1234567890~" +
	"DTM*232*20221215~" +
	"DTM*233*20221215~" +
	"CAS*CO*45*50.00~" +
	"CAS*PR*2*50.00~" +
	"SVC*HC:99213*250.00*200.00**1~" +
	"DTM*472*20221215~" +
	"CAS*CO*45*25.00~" +
	"CAS*PR*2*25.00~" +
	"SVC*HC:99214*250.00*200.00**1~" +
	"DTM*472*20221215~" +
	"CAS*CO*45*25.00~" +
	"CAS*PR*2*25.00~" +
	"CLP*CLM002*1*1000.00*800.00*100.00*12*PAYERCLM002~" +
	"NM1*QC*1*SMITH*JANE****MI*MEM002~" +
	"NM1*82*1*SMITH*JAMES****XX*1234567890~" +
	"DTM*232*20221220~" +
	"DTM*233*20221220~" +
	"CAS*CO*45*100.00~" +
	"CAS*PR*3*100.00~" +
	"SVC*HC:99215*500.00*400.00**1~" +
	"DTM*472*20221220~" +
	"CAS*CO*45*50.00~" +
	"CAS*PR*3*50.00~" +
	"SVC*HC:36415*500.00*400.00**1~" +
	"DTM*472*20221220~" +
	"CAS*CO*45*50.00~" +
	"CAS*PR*3*50.00~" +
	"SE*40*0001~" +
	"GE*1*1~" +
	"IEA*1*000000001~"

const sample837 = "ISA*00*          *00*          *ZZ*SENDER         *ZZ*RECEIVER       *230201*0800*^*00501*000000002*0*P*:~" +
	"GS*HC*SENDER*RECEIVER*20230201*0800*2*X*005010X222A1~" +
	"ST*837*0002*005010X222A1~" +
	"BHT*0019*00*BATCH001*20230201*0800*CH~" +
	"HL*1**20*1~" +
	"NM1*85*2*SMITH MEDICAL GROUP*****XX*1234567890~" +
	"N3*123 MAIN STREET~" +
	"N4*ANYTOWN*CA*90210~" +
	"REF*EI*123456789~" +
	"HL*2*1*22*1~" +
	"SBR*P*18*GRP001*ACME PLAN*****CI~" +
	"NM1*IL*1*DOE*JOHN*M***MI*MEM001~" +
	"N3*456 OAK AVE~" +
	"N4*SOMEWHERE*CA*90211~" +
	"DMG*D8*19800115*M~" +
	"NM1*PR*2*ACME INSURANCE CO*****PI*12345~" +
	"HL*3*2*23*0~" +
	"NM1*QC*1*DOE*JIMMY****MI*MEM001D~" +
	"N3*456 OAK AVE~" +
	"N4*SOMEWHERE*CA*90211~" +
	"DMG*D8*20100520*M~" +
	"CLM*PAT001*350.00***11:B:1*Y*A*Y*Y~" +
	"DTP*431*D8*20230115~" +
	"HI*ABK:J06.9*ABF:R50.9~" +
	"NM1*82*1*SMITH*JAMES****XX*1234567890~" +
	"SV1*HC:99213:25*150.00*UN*1*11~" +
	"DTP*472*D8*20230115~" +
	"SV1*HC:87880*100.00*UN*1*11~" +
	"DTP*472*D8*20230115~" +
	"SV1*HC:99050*100.00*UN*1*11~" +
	"DTP*472*D8*20230115~" +
	"SE*30*0002~" +
	"GE*1*2~" +
	"IEA*1*000000002~"

const isaHeader = "ISA*00*          *00*          *ZZ*SENDER         *ZZ*RECEIVER       *230101*1200*^*00501*000000001*0*P*:~"

const sample271 = isaHeader +
	"GS*HB*SENDER*RECEIVER*20230101*1200*1*X*005010X279A1~" +
	"ST*271*0001*005010X279A1~" +
	"BHT*0022*11*REQ001*20230101*1200~" +
	"HL*1**20*1~" +
	"NM1*PR*2*ACME INSURANCE CO*****PI*12345~" +
	"HL*2*1*21*1~" +
	"NM1*1P*2*SMITH MEDICAL GROUP*****XX*1234567890~" +
	"HL*3*2*22*0~" +
	"NM1*IL*1*DOE*JOHN****MI*MEM001~" +
	"DMG*D8*19800115*M~" +
	"DTP*291*D8*20230101~" +
	"EB*1*IND*30**GOLD PLAN~" +
	"EB*C*IND*30***500.00~" +
	"EB*A*IND*30****0.2~" +
	"AAA*N**72*C~" +
	"SE*14*0001~" +
	"GE*1*1~" +
	"IEA*1*000000001~"

const sample276 = isaHeader +
	"GS*HR*SENDER*RECEIVER*20230101*1200*1*X*005010X212~" +
	"ST*276*0001*005010X212~" +
	"HL*1**20*1~" +
	"NM1*PR*2*ACME INSURANCE CO*****PI*12345~" +
	"HL*2*1*22*0~" +
	"NM1*IL*1*DOE*JOHN****MI*MEM001~" +
	"TRN*1*TRACE002~" +
	"REF*EJ*PAT002~" +
	"AMT*T3*125.50~" +
	"DTP*472*D8*20230106~" +
	"SE*10*0001~" +
	"GE*1*1~" +
	"IEA*1*000000001~"

const sample277 = isaHeader +
	"GS*HN*SENDER*RECEIVER*20230101*1200*1*X*005010X212~" +
	"ST*277*0001*005010X212~" +
	"BHT*0010*08*STAT001*20230101*1200*DG~" +
	"HL*1**20*1~" +
	"NM1*PR*2*ACME INSURANCE CO*****PI*12345~" +
	"HL*2*1*21*1~" +
	"NM1*41*2*SMITH MEDICAL GROUP*****46*1234567890~" +
	"HL*3*2*19*1~" +
	"NM1*1P*2*SMITH MEDICAL GROUP*****XX*1234567890~" +
	"HL*4*3*22*0~" +
	"NM1*IL*1*DOE*JOHN****MI*MEM001~" +
	"TRN*2*TRACE001~" +
	"STC*F1:65:PR*20230110**350.00*300.00~" +
	"REF*1K*PAYERCLM001~" +
	"REF*EJ*PAT001~" +
	"DTP*472*D8*20230105~" +
	"SE*17*0001~" +
	"GE*1*1~" +
	"IEA*1*000000001~"

const sample834 = isaHeader +
	"GS*BE*SENDER*RECEIVER*20230101*1200*1*X*005010X220A1~" +
	"ST*834*0001*005010X220A1~" +
	"BGN*00*REF001*20230101*1200****2~" +
	"N1*P5*ACME EMPLOYER*FI*123456789~" +
	"N1*IN*ACME INSURANCE CO*FI*987654321~" +
	"INS*Y*18*021*28*A***FT~" +
	"REF*0F*MEM001~" +
	"NM1*IL*1*DOE*JOHN*M***34*123456789~" +
	"N3*456 OAK AVE~" +
	"N4*SOMEWHERE*CA*90211~" +
	"DMG*D8*19800115*M~" +
	"HD*021**HLT*PLAN01*EMP~" +
	"DTP*348*D8*20230101~" +
	"DTP*336*D8*20230101~" +
	"INS*N*19*021*28*A~" +
	"NM1*IL*1*DOE*JIMMY~" +
	"DMG*D8*20100520*M~" +
	"HD*021**HLT*PLAN01*FAM~" +
	"DTP*336*D8*20230101~" +
	"DTP*337*D8*20231231~" +
	"SE*20*0001~" +
	"GE*1*1~" +
	"IEA*1*000000001~"

const sample278 = isaHeader +
	"GS*HI*SENDER*RECEIVER*20230101*1200*1*X*005010X217~" +
	"ST*278*0001*005010X217~" +
	"BHT*0007*13*REF001*20230101*1200~" +
	"HL*1**20*1~" +
	"NM1*X3*2*ACME INSURANCE CO*****PI*12345~" +
	"HL*2*1*21*1~" +
	"NM1*1P*1*SMITH*JAMES****XX*1234567890~" +
	"HL*3*2*22*1~" +
	"NM1*IL*1*DOE*JOHN****MI*MEM001~" +
	"HL*4*3*EV*0~" +
	"TRN*1*TRACE278*1234567890~" +
	"UM*HS*I*2~" +
	"HCR*A1*AUTH12345~" +
	"DTP*472*D8*20230115~" +
	"HI*ABK:M54.5*ABF:M51.26~" +
	"SV1*HC:72148*1500.00*UN*1~" +
	"SE*15*0001~" +
	"GE*1*1~" +
	"IEA*1*000000001~"

const sample999 = isaHeader +
	"GS*FA*SENDER*RECEIVER*20230101*1200*1*X*005010X231A1~" +
	"ST*999*0001*005010X231A1~" +
	"AK1*HC*1*005010X222A1~" +
	"AK2*837*0001*005010X222A1~" +
	"IK5*A~" +
	"AK9*A*1*1*1~" +
	"SE*6*0001~" +
	"GE*1*1~" +
	"IEA*1*000000001~"

const sample820 = isaHeader +
	"GS*RA*SENDER*RECEIVER*20230101*1200*1*X*005010X218~" +
	"ST*820*0001*005010X218~" +
	"BPR*C*1500.00*C*ACH~" +
	"TRN*1*PREM001~" +
	"SE*4*0001~" +
	"GE*1*1~" +
	"IEA*1*000000001~"
